package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"shophub/internal/domain/model"
	repo "shophub/internal/repository"
)

type OrderUsecase struct {
	tx repo.TransactionManager

	//tx外の読み取り（見積り）用
	products repo.ProductRepository

	auditRepo repo.AuditLogRepository
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	products repo.ProductRepository,
	auditRepo repo.AuditLogRepository,
) *OrderUsecase {
	return &OrderUsecase{tx: tx, products: products, auditRepo: auditRepo}
}

type PlaceOrderItemInput struct {
	ProductID int64
	Quantity  int64
	//クライアントが見ていた価格。スナップショットとしてそのまま保存する
	Price float64
}

type PlaceOrderInput struct {
	CustomerName string
	Phone        string
	Email        string
	Address      string
	City         string
	Province     string
	PostalCode   string
	Items        []PlaceOrderItemInput

	//クライアント側で計算した小計。配送料はサーバーで再計算して足す
	TotalAmount float64
}

type OrderProductOutput struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Image string  `json:"image"`
	Price float64 `json:"price"`
}

type OrderItemOutput struct {
	ProductID int64   `json:"product_id"`
	Quantity  int64   `json:"quantity"`
	Price     float64 `json:"price"`

	//商品が既に削除されていたらnull（エラーにはしない）
	Product *OrderProductOutput `json:"product"`
}

type OrderOutput struct {
	ID              int64             `json:"id"`
	CustomerName    string            `json:"customer_name"`
	Phone           string            `json:"phone"`
	Email           string            `json:"email"`
	Address         string            `json:"address"`
	City            string            `json:"city"`
	Province        string            `json:"province"`
	PostalCode      string            `json:"postal_code"`
	TotalAmount     float64           `json:"total_amount"`
	DeliveryCharges float64           `json:"delivery_charges"`
	Status          string            `json:"status"`
	CreatedAt       time.Time         `json:"created_at"`
	Items           []OrderItemOutput `json:"items"`
}

// 注文確定。1回の送信＝1トランザクションで、
// 商品取得→在庫減算→配送料加算を明細順に行い、最後に注文を書く。
// どこかで失敗したら在庫減算ごと全部巻き戻す。リトライはしない。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, in PlaceOrderInput) (OrderOutput, error) {
	//トランザクションに入る前の入力チェック
	if err := validatePlaceOrder(in); err != nil {
		return OrderOutput{}, err
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orderItems := make([]model.OrderItem, 0, len(in.Items))
		resolved := make([]model.Product, 0, len(in.Items))
		var delivery float64 = 0

		for _, it := range in.Items {
			//商品取得（同一tx内の読み取り）
			p, err := r.Products().FindByID(ctx, it.ProductID)
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusBadRequest,
					fmt.Sprintf("product not found: %d", it.ProductID))
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			//ユーザー向けメッセージ用の事前チェック
			if p.Stock < it.Quantity {
				return NewHTTPError(http.StatusBadRequest, insufficientStockMessage(p))
			}

			//在庫減算。stock >= qty を条件にしたUPDATEなので、
			//ここが通らない限り在庫は絶対に減らない
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, it.ProductID, it.Quantity)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				//事前チェックと減算の間に他の注文が確定した
				fresh, ferr := r.Products().FindByID(ctx, it.ProductID)
				if ferr != nil {
					fresh = p
					fresh.Stock = 0
				}
				return NewHTTPError(http.StatusBadRequest, insufficientStockMessage(fresh))
			}

			//配送料
			delivery += DeliveryContribution(p, it.Quantity)

			//価格スナップショットは入力の値をそのまま保存する
			orderItems = append(orderItems, model.OrderItem{
				ProductID:     it.ProductID,
				Quantity:      it.Quantity,
				PriceSnapshot: it.Price,
			})
			resolved = append(resolved, p)
		}

		//注文作成（在庫減算と同じtxで書くので中途半端な状態は残らない）
		now := time.Now()
		order := model.Order{
			CustomerName:    strings.TrimSpace(in.CustomerName),
			Phone:           strings.TrimSpace(in.Phone),
			Email:           strings.TrimSpace(in.Email),
			Address:         strings.TrimSpace(in.Address),
			City:            strings.TrimSpace(in.City),
			Province:        strings.TrimSpace(in.Province),
			PostalCode:      strings.TrimSpace(in.PostalCode),
			TotalAmount:     in.TotalAmount + delivery,
			DeliveryCharges: delivery,
			Status:          model.OrderStatusPending,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		order.ID = orderID
		out = toOrderOutput(order, orderItems, resolved)
		return nil
	})

	if err != nil {
		if errors.Is(err, repo.ErrTxConflict) {
			return OrderOutput{}, NewHTTPError(http.StatusConflict,
				"order could not be placed due to a concurrent update, please retry")
		}
		return OrderOutput{}, err
	}
	return out, nil
}

// 全注文を新しい順で返す。明細の商品は残っていれば現在情報を付け、
// 削除済みならnullのまま返す。
func (u *OrderUsecase) ListOrders(ctx context.Context) ([]OrderOutput, error) {
	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().ListAll(ctx)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			products := make([]model.Product, len(items))
			for i, it := range items {
				p, err := r.Products().FindByID(ctx, it.ProductID)
				if errors.Is(err, repo.ErrNotFound) {
					//商品削除済み。明細は残す
					continue
				}
				if err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				products[i] = p
			}

			outs = append(outs, toOrderOutput(o, items, products))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

type UpdateOrderStatusInput struct {
	Status string
}

// ステータス更新。Pending→Processing→Shipped→Deliveredの一方向で、
// Cancelledは終端以外のどこからでも可。DeliveredとCancelledは変更不可。
func (u *OrderUsecase) UpdateStatus(ctx context.Context, actorAdminID int64, orderID int64, in UpdateOrderStatusInput) error {
	if actorAdminID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	newStatus := model.OrderStatus(strings.TrimSpace(in.Status))
	if !newStatus.Valid() {
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//同じなら何もしない（200）
		if o.Status == newStatus {
			return nil
		}
		if o.Status.Terminal() {
			return NewHTTPError(http.StatusBadRequest,
				fmt.Sprintf("cannot change %s order", strings.ToLower(string(o.Status))))
		}
		if !o.Status.CanTransitionTo(newStatus) {
			return NewHTTPError(http.StatusBadRequest,
				fmt.Sprintf("cannot change status from %s to %s", o.Status, newStatus))
		}

		if err := r.Orders().UpdateStatus(ctx, orderID, newStatus); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "order not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//監査ログ
		beforeJSON := fmt.Sprintf(`{"status":%q}`, o.Status)
		afterJSON := fmt.Sprintf(`{"status":%q}`, newStatus)
		if err := u.auditRepo.Create(ctx, model.AuditLog{
			ActorAdminID: actorAdminID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   beforeJSON,
			AfterJSON:    afterJSON,
			CreatedAt:    time.Now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		return nil
	})
}

// 注文削除（明細ごと消す）。在庫には触らない。
func (u *OrderUsecase) DeleteOrder(ctx context.Context, actorAdminID int64, orderID int64) error {
	if actorAdminID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.OrderItems().DeleteByOrderID(ctx, orderID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.Orders().Delete(ctx, orderID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := u.auditRepo.Create(ctx, model.AuditLog{
			ActorAdminID: actorAdminID,
			Action:       model.AuditActionDeleteOrder,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   fmt.Sprintf(`{"status":%q,"total_amount":%g}`, o.Status, o.TotalAmount),
			AfterJSON:    "null",
			CreatedAt:    time.Now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		return nil
	})
}

type QuoteItemInput struct {
	ProductID int64
	Quantity  int64
}

type QuoteOutput struct {
	DeliveryCharges float64 `json:"delivery_charges"`
}

// 配送料の見積り。チェックアウト画面のプレビュー用で、
// トランザクションも在庫減算も発生しない。
func (u *OrderUsecase) QuoteDelivery(ctx context.Context, items []QuoteItemInput) (QuoteOutput, error) {
	if len(items) == 0 {
		return QuoteOutput{}, NewHTTPError(http.StatusBadRequest, "items required")
	}

	var delivery float64 = 0
	for _, it := range items {
		if it.Quantity <= 0 {
			return QuoteOutput{}, NewHTTPError(http.StatusBadRequest, "quantity must be positive")
		}

		p, err := u.products.FindByID(ctx, it.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			return QuoteOutput{}, NewHTTPError(http.StatusBadRequest,
				fmt.Sprintf("product not found: %d", it.ProductID))
		}
		if err != nil {
			return QuoteOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}

		delivery += DeliveryContribution(p, it.Quantity)
	}

	return QuoteOutput{DeliveryCharges: delivery}, nil
}

func validatePlaceOrder(in PlaceOrderInput) error {
	//必須の連絡先・配送先（email/postal_codeは任意）
	if strings.TrimSpace(in.CustomerName) == "" {
		return NewHTTPError(http.StatusBadRequest, "customer name required")
	}
	if strings.TrimSpace(in.Phone) == "" {
		return NewHTTPError(http.StatusBadRequest, "phone required")
	}
	if strings.TrimSpace(in.Address) == "" {
		return NewHTTPError(http.StatusBadRequest, "address required")
	}
	if strings.TrimSpace(in.City) == "" {
		return NewHTTPError(http.StatusBadRequest, "city required")
	}
	if strings.TrimSpace(in.Province) == "" {
		return NewHTTPError(http.StatusBadRequest, "province required")
	}

	if len(in.Items) == 0 {
		return NewHTTPError(http.StatusBadRequest, "order must contain at least one item")
	}
	for _, it := range in.Items {
		if it.ProductID <= 0 {
			return NewHTTPError(http.StatusBadRequest, "invalid product id")
		}
		if it.Quantity <= 0 {
			return NewHTTPError(http.StatusBadRequest, "quantity must be positive")
		}
		if it.Price < 0 {
			return NewHTTPError(http.StatusBadRequest, "price must be >= 0")
		}
	}

	if in.TotalAmount < 0 {
		return NewHTTPError(http.StatusBadRequest, "total amount must be >= 0")
	}
	return nil
}

func insufficientStockMessage(p model.Product) string {
	return fmt.Sprintf("insufficient stock for %s. available: %d", p.Name, p.Stock)
}

// productsはitemsと同じ並びで、削除済みの位置はゼロ値
func toOrderOutput(o model.Order, items []model.OrderItem, products []model.Product) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for i, it := range items {
		var prod *OrderProductOutput
		if i < len(products) && products[i].ID != 0 {
			p := products[i]
			prod = &OrderProductOutput{
				ID:    p.ID,
				Name:  p.Name,
				Image: p.Image,
				Price: p.Price,
			}
		}
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.PriceSnapshot,
			Product:   prod,
		})
	}

	return OrderOutput{
		ID:              o.ID,
		CustomerName:    o.CustomerName,
		Phone:           o.Phone,
		Email:           o.Email,
		Address:         o.Address,
		City:            o.City,
		Province:        o.Province,
		PostalCode:      o.PostalCode,
		TotalAmount:     o.TotalAmount,
		DeliveryCharges: o.DeliveryCharges,
		Status:          string(o.Status),
		CreatedAt:       o.CreatedAt,
		Items:           outItems,
	}
}
