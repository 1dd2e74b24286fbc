package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"shophub/internal/config"
	"shophub/internal/middleware"
	"shophub/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// 1商品あたりの画像アップロード上限
const maxProductImages = 10

// 商品の管理API（作成・更新・削除・入荷）
type AdminProductHandler struct {
	uc        *usecase.ProductUsecase
	uploadDir string
}

func NewAdminProductHandler(uc *usecase.ProductUsecase, uploadDir string) *AdminProductHandler {
	return &AdminProductHandler{uc: uc, uploadDir: uploadDir}
}

func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/api/products")
	g.Use(middleware.AdminJWT(cfg))

	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)

	admin := e.Group("/api/admin")
	admin.Use(middleware.AdminJWT(cfg))
	admin.PUT("/products/:id/stock", h.restock)
}

type RestockRequest struct {
	Stock  int64  `json:"stock"`
	Reason string `json:"reason"`
}

func (h *AdminProductHandler) create(c echo.Context) error {
	adminID, ok := getAdminIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "unauthorized"})
	}

	in, err := h.bindProductForm(c)
	if err != nil {
		return writeError(c, err)
	}

	p, err := h.uc.AdminCreateProduct(c.Request().Context(), adminID, in)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, p)
}

func (h *AdminProductHandler) update(c echo.Context) error {
	adminID, ok := getAdminIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid id"})
	}

	in, err := h.bindProductForm(c)
	if err != nil {
		return writeError(c, err)
	}

	p, err := h.uc.AdminUpdateProduct(c.Request().Context(), adminID, id, in)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, p)
}

func (h *AdminProductHandler) delete(c echo.Context) error {
	adminID, ok := getAdminIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid id"})
	}

	if err := h.uc.AdminDeleteProduct(c.Request().Context(), adminID, id); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "product deleted"})
}

func (h *AdminProductHandler) restock(c echo.Context) error {
	adminID, ok := getAdminIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "unauthorized"})
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid id"})
	}

	var req RestockRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid body"})
	}

	if err := h.uc.AdminRestock(c.Request().Context(), adminID, id, req.Stock, req.Reason); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "stock updated"})
}

// multipartフォームから商品入力を組み立てる。
// 画像があれば保存して、先頭をメイン画像にする。
func (h *AdminProductHandler) bindProductForm(c echo.Context) (usecase.AdminProductInput, error) {
	var in usecase.AdminProductInput

	in.Name = c.FormValue("name")
	in.Description = c.FormValue("description")
	in.SKU = c.FormValue("sku")

	if v := c.FormValue("price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return in, usecase.NewHTTPError(http.StatusBadRequest, "invalid price")
		}
		in.Price = price
	}

	if v := c.FormValue("stock"); v != "" {
		stock, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return in, usecase.NewHTTPError(http.StatusBadRequest, "invalid stock")
		}
		in.Stock = stock
	}

	if v := c.FormValue("delivery_charges"); v != "" {
		d, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return in, usecase.NewHTTPError(http.StatusBadRequest, "invalid delivery_charges")
		}
		in.DeliveryCharges = d
	}

	if v := c.FormValue("increase_delivery_with_qty"); v != "" {
		in.IncreaseDeliveryWithQty = v == "true" || v == "1"
	}

	if v := c.FormValue("category"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return in, usecase.NewHTTPError(http.StatusBadRequest, "invalid category")
		}
		in.CategoryID = &id
	}

	images, err := h.saveUploadedImages(c)
	if err != nil {
		return in, err
	}
	if len(images) > 0 {
		in.Image = images[0]
		in.Images = images
	}

	return in, nil
}

// アップロード画像をuuid名で保存して公開パスを返す
func (h *AdminProductHandler) saveUploadedImages(c echo.Context) ([]string, error) {
	form, err := c.MultipartForm()
	if err != nil {
		//multipartでない（JSONなど画像なし更新）のは許す
		return nil, nil
	}

	files := form.File["images"]
	if len(files) == 0 {
		return nil, nil
	}
	if len(files) > maxProductImages {
		return nil, usecase.NewHTTPError(http.StatusBadRequest, "too many images")
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return nil, usecase.NewHTTPError(http.StatusInternalServerError, "upload failed")
	}

	paths := make([]string, 0, len(files))
	for _, fh := range files {
		name := uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))
		if err := saveMultipartFile(fh, filepath.Join(h.uploadDir, name)); err != nil {
			return nil, usecase.NewHTTPError(http.StatusInternalServerError, "upload failed")
		}
		paths = append(paths, "/uploads/"+name)
	}
	return paths, nil
}

func saveMultipartFile(fh *multipart.FileHeader, dst string) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}
