package seed

import (
	"context"
	"log/slog"

	"shophub/internal/domain/model"
	repo "shophub/internal/repository"
)

type PasswordHasher interface {
	Hash(plain string) (string, error)
}

type Seeder struct {
	admins     repo.AdminUserRepository
	categories repo.CategoryRepository
	products   repo.ProductRepository
	hasher     PasswordHasher
	log        *slog.Logger
}

func New(
	admins repo.AdminUserRepository,
	categories repo.CategoryRepository,
	products repo.ProductRepository,
	hasher PasswordHasher,
	log *slog.Logger,
) *Seeder {
	return &Seeder{
		admins:     admins,
		categories: categories,
		products:   products,
		hasher:     hasher,
		log:        log,
	}
}

// Runは空のDBに初期データを入れる。既にデータがあれば何もしない。
func (s *Seeder) Run(ctx context.Context) error {
	if err := s.seedAdmin(ctx); err != nil {
		return err
	}
	return s.seedCatalog(ctx)
}

func (s *Seeder) seedAdmin(ctx context.Context) error {
	n, err := s.admins.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	hash, err := s.hasher.Hash("mmmm#1234")
	if err != nil {
		return err
	}

	if _, err := s.admins.Create(ctx, model.AdminUser{
		Email:        "admin_manager@admin.com",
		PasswordHash: hash,
	}); err != nil {
		return err
	}

	s.log.Info("seeded admin account")
	return nil
}

func (s *Seeder) seedCatalog(ctx context.Context) error {
	existing, err := s.categories.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	names := []string{"Electronics", "Fashion", "Home & Living", "Photography", "Furniture"}
	ids := make(map[string]int64, len(names))
	for _, name := range names {
		c, err := s.categories.Create(ctx, model.Category{Name: name, Slug: slugify(name)})
		if err != nil {
			return err
		}
		ids[name] = c.ID
	}

	electronics := ids["Electronics"]
	fashion := ids["Fashion"]
	photography := ids["Photography"]
	furniture := ids["Furniture"]

	products := []model.Product{
		{
			Name:            "Wireless Headphones",
			Description:     "Premium noise-cancelling headphones",
			Price:           25000,
			CategoryID:      &electronics,
			Image:           "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=500&auto=format&fit=crop&q=60",
			Stock:           50,
			DeliveryCharges: 200,
		},
		{
			Name:        "Smart Watch",
			Description: "Fitness tracker and smartwatch",
			Price:       15000,
			CategoryID:  &electronics,
			Image:       "https://images.unsplash.com/photo-1523275335684-37898b6baf30?w=500&auto=format&fit=crop&q=60",
			Stock:       30,
		},
		{
			Name:        "Professional Camera Lens",
			Description: "Capture stunning visuals with this 50mm f/1.8 prime lens. Perfect for portraits and low-light photography.",
			Price:       899.99,
			CategoryID:  &photography,
			Image:       "https://images.unsplash.com/photo-1617005082133-548c4dd27f35?w=800&q=80",
			Stock:       5,
			Rating:      4.9,
			NumReviews:  45,
		},
		{
			Name:        "Designer Sunglasses",
			Description: "Protect your eyes in style. UV400 protection with durable frames.",
			Price:       199.00,
			CategoryID:  &fashion,
			Image:       "https://images.unsplash.com/photo-1572635196237-14b3f281503f?w=800&q=80",
			Stock:       100,
			Rating:      4.6,
			NumReviews:  60,
		},
		{
			Name:        "Smart Fitness Tracker",
			Description: "Track your health metrics with precision. Heart rate monitoring, sleep tracking, and GPS.",
			Price:       99.95,
			CategoryID:  &electronics,
			Image:       "https://images.unsplash.com/photo-1575311373937-040b8e1fd5b6?w=800&q=80",
			Stock:       75,
			Rating:      4.4,
			NumReviews:  300,
		},
		{
			Name:        "Ergonomic Office Chair",
			Description: "Maximize your productivity with this ergonomic office chair. Adjustable lumbar support and breathable mesh back.",
			Price:       249.00,
			CategoryID:  &furniture,
			Image:       "https://images.unsplash.com/photo-1505843490538-5133c6c7d0e1?w=800&q=80",
			Stock:       15,
			Rating:      4.7,
			NumReviews:  200,
		},
	}

	for _, p := range products {
		if _, err := s.products.Create(ctx, p); err != nil {
			return err
		}
	}

	s.log.Info("seeded catalog", "categories", len(names), "products", len(products))
	return nil
}

func slugify(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r == ' ':
			out = append(out, '-')
		case r == '&':
			//"Home & Living" -> "home-living"
			continue
		default:
			out = append(out, r)
		}
	}
	//連続ハイフンを潰す
	res := make([]rune, 0, len(out))
	for _, r := range out {
		if r == '-' && len(res) > 0 && res[len(res)-1] == '-' {
			continue
		}
		res = append(res, r)
	}
	return string(res)
}
