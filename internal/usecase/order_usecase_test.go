package usecase_test

import (
	"context"
	"strings"
	"testing"

	"shophub/internal/domain/model"
	repo "shophub/internal/repository"
	"shophub/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// OrderTxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type OrderTxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos

	//DB側の衝突を再現したいときに入れる
	ForcedErr error
}

func (m *OrderTxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.Called(ctx)
	if m.ForcedErr != nil {
		return m.ForcedErr
	}
	return fn(m.Repos)
}

type OrderTxReposMock struct {
	products   repo.ProductRepository
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	inventory  repo.InventoryRepository
}

func (r *OrderTxReposMock) Products() repo.ProductRepository     { return r.products }
func (r *OrderTxReposMock) Orders() repo.OrderRepository         { return r.orders }
func (r *OrderTxReposMock) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *OrderTxReposMock) Inventory() repo.InventoryRepository  { return r.inventory }

// =====================
// Repository mocks
// =====================

type OrderProductRepoMock struct{ mock.Mock }

func (m *OrderProductRepoMock) List(ctx context.Context, categoryID *int64) ([]model.Product, error) {
	panic("not used in OrderUsecase tests")
}

func (m *OrderProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *OrderProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	panic("not used in OrderUsecase tests")
}

func (m *OrderProductRepoMock) Update(ctx context.Context, p model.Product) error {
	panic("not used in OrderUsecase tests")
}

func (m *OrderProductRepoMock) Delete(ctx context.Context, id int64) error {
	panic("not used in OrderUsecase tests")
}

func (m *OrderProductRepoMock) DetachCategory(ctx context.Context, categoryID int64) error {
	panic("not used in OrderUsecase tests")
}

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListAll(ctx context.Context) ([]model.Order, error) {
	args := m.Called(ctx)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Error(1)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *OrderRepoMock) Delete(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

func (m *OrderItemRepoMock) DeleteByOrderID(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

type OrderInventoryRepoMock struct{ mock.Mock }

func (m *OrderInventoryRepoMock) SetStock(ctx context.Context, productID int64, newStock int64) error {
	panic("not used in OrderUsecase tests")
}

func (m *OrderInventoryRepoMock) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	args := m.Called(ctx, productID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *OrderInventoryRepoMock) CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error {
	panic("not used in OrderUsecase tests")
}

type OrderAuditRepoMock struct{ mock.Mock }

func (m *OrderAuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *OrderAuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	panic("not used in OrderUsecase tests")
}

// =====================
// helpers
// =====================

func assertErrContains(t *testing.T, err error, want string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error containing %q, got nil", want)
	}
	if !strings.Contains(err.Error(), want) {
		t.Fatalf("expected error containing %q, got %q", want, err.Error())
	}
}

type orderFixture struct {
	tx        *OrderTxManagerMock
	products  *OrderProductRepoMock
	orders    *OrderRepoMock
	items     *OrderItemRepoMock
	inventory *OrderInventoryRepoMock
	audit     *OrderAuditRepoMock
	uc        *usecase.OrderUsecase
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		products:  new(OrderProductRepoMock),
		orders:    new(OrderRepoMock),
		items:     new(OrderItemRepoMock),
		inventory: new(OrderInventoryRepoMock),
		audit:     new(OrderAuditRepoMock),
	}
	f.tx = &OrderTxManagerMock{
		Repos: &OrderTxReposMock{
			products:   f.products,
			orders:     f.orders,
			orderItems: f.items,
			inventory:  f.inventory,
		},
	}
	f.tx.On("WithinTx", mock.Anything).Return(nil).Maybe()
	f.uc = usecase.NewOrderUsecase(f.tx, f.products, f.audit)
	return f
}

func validOrderInput(items []usecase.PlaceOrderItemInput, subtotal float64) usecase.PlaceOrderInput {
	return usecase.PlaceOrderInput{
		CustomerName: "Taro Yamada",
		Phone:        "090-0000-0000",
		Address:      "1-2-3 Chuo",
		City:         "Osaka",
		Province:     "Osaka",
		Items:        items,
		TotalAmount:  subtotal,
	}
}

// =====================
// PlaceOrder: validation
// =====================

func TestOrderUsecase_PlaceOrder_MissingCustomerName(t *testing.T) {
	f := newOrderFixture()

	in := validOrderInput([]usecase.PlaceOrderItemInput{{ProductID: 1, Quantity: 1, Price: 100}}, 100)
	in.CustomerName = ""

	_, err := f.uc.PlaceOrder(context.Background(), in)
	assertErrContains(t, err, "customer name required")
}

func TestOrderUsecase_PlaceOrder_MissingShippingFields(t *testing.T) {
	f := newOrderFixture()

	for _, mutate := range []func(*usecase.PlaceOrderInput){
		func(in *usecase.PlaceOrderInput) { in.Phone = "" },
		func(in *usecase.PlaceOrderInput) { in.Address = "" },
		func(in *usecase.PlaceOrderInput) { in.City = "" },
		func(in *usecase.PlaceOrderInput) { in.Province = "" },
	} {
		in := validOrderInput([]usecase.PlaceOrderItemInput{{ProductID: 1, Quantity: 1, Price: 100}}, 100)
		mutate(&in)

		_, err := f.uc.PlaceOrder(context.Background(), in)
		assertErrContains(t, err, "required")
	}
}

func TestOrderUsecase_PlaceOrder_EmptyItems(t *testing.T) {
	f := newOrderFixture()

	_, err := f.uc.PlaceOrder(context.Background(), validOrderInput(nil, 0))
	assertErrContains(t, err, "at least one item")
}

func TestOrderUsecase_PlaceOrder_NonPositiveQuantity(t *testing.T) {
	f := newOrderFixture()

	in := validOrderInput([]usecase.PlaceOrderItemInput{{ProductID: 1, Quantity: 0, Price: 100}}, 0)
	_, err := f.uc.PlaceOrder(context.Background(), in)
	assertErrContains(t, err, "quantity must be positive")
}

// =====================
// PlaceOrder: engine
// =====================

func TestOrderUsecase_PlaceOrder_ProductNotFound(t *testing.T) {
	f := newOrderFixture()

	f.products.On("FindByID", mock.Anything, int64(99)).Return(model.Product{}, repo.ErrNotFound)

	in := validOrderInput([]usecase.PlaceOrderItemInput{{ProductID: 99, Quantity: 1, Price: 100}}, 100)
	_, err := f.uc.PlaceOrder(context.Background(), in)

	assertErrContains(t, err, "product not found: 99")
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.inventory.AssertNotCalled(t, "DecreaseStockIfEnough", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderUsecase_PlaceOrder_InsufficientStock(t *testing.T) {
	f := newOrderFixture()

	//在庫3に対して5を注文
	f.products.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, Name: "Smart Watch", Stock: 3, Price: 15000}, nil)

	in := validOrderInput([]usecase.PlaceOrderItemInput{{ProductID: 1, Quantity: 5, Price: 15000}}, 75000)
	_, err := f.uc.PlaceOrder(context.Background(), in)

	assertErrContains(t, err, "insufficient stock for Smart Watch")
	assertErrContains(t, err, "available: 3")

	//在庫もオーダーも一切触らない
	f.inventory.AssertNotCalled(t, "DecreaseStockIfEnough", mock.Anything, mock.Anything, mock.Anything)
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderUsecase_PlaceOrder_LostRaceOnDecrement(t *testing.T) {
	f := newOrderFixture()

	//事前チェックは通るが、条件付きUPDATEで他の注文に先を越される
	f.products.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, Name: "Lens", Stock: 1, Price: 899.99}, nil).Once()
	f.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(1), int64(1)).Return(false, nil)
	f.products.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, Name: "Lens", Stock: 0, Price: 899.99}, nil).Once()

	in := validOrderInput([]usecase.PlaceOrderItemInput{{ProductID: 1, Quantity: 1, Price: 899.99}}, 899.99)
	_, err := f.uc.PlaceOrder(context.Background(), in)

	assertErrContains(t, err, "insufficient stock for Lens")
	assertErrContains(t, err, "available: 0")
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderUsecase_PlaceOrder_SecondItemFails_NoOrderCreated(t *testing.T) {
	f := newOrderFixture()

	//商品A（在庫10）は通る
	f.products.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, Name: "A", Stock: 10, Price: 100, DeliveryCharges: 50}, nil)
	f.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(1), int64(2)).Return(true, nil)

	//商品B（在庫0）で失敗
	f.products.On("FindByID", mock.Anything, int64(2)).
		Return(model.Product{ID: 2, Name: "B", Stock: 0, Price: 200}, nil)

	in := validOrderInput([]usecase.PlaceOrderItemInput{
		{ProductID: 1, Quantity: 2, Price: 100},
		{ProductID: 2, Quantity: 1, Price: 200},
	}, 400)
	_, err := f.uc.PlaceOrder(context.Background(), in)

	//Bを理由に失敗し、注文は書かれない（Aの減算はtxロールバックで消える前提）
	assertErrContains(t, err, "insufficient stock for B")
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.items.AssertNotCalled(t, "CreateBulk", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderUsecase_PlaceOrder_EndToEnd(t *testing.T) {
	f := newOrderFixture()

	//A: 在庫10、価格100、固定配送料50、数量2
	f.products.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, Name: "A", Stock: 10, Price: 100, DeliveryCharges: 50}, nil)
	f.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(1), int64(2)).Return(true, nil)

	//B: 在庫1、価格200、配送料なし、数量1
	f.products.On("FindByID", mock.Anything, int64(2)).
		Return(model.Product{ID: 2, Name: "B", Stock: 1, Price: 200}, nil)
	f.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(2), int64(1)).Return(true, nil)

	//totalAmount = 小計400 + 配送料50 = 450
	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.TotalAmount == 450 &&
			o.DeliveryCharges == 50 &&
			o.Status == model.OrderStatusPending
	})).Return(int64(7), nil)

	f.items.On("CreateBulk", mock.Anything, int64(7), mock.MatchedBy(func(items []model.OrderItem) bool {
		return len(items) == 2 &&
			items[0].ProductID == 1 && items[0].Quantity == 2 && items[0].PriceSnapshot == 100 &&
			items[1].ProductID == 2 && items[1].Quantity == 1 && items[1].PriceSnapshot == 200
	})).Return(nil)

	in := validOrderInput([]usecase.PlaceOrderItemInput{
		{ProductID: 1, Quantity: 2, Price: 100},
		{ProductID: 2, Quantity: 1, Price: 200},
	}, 400)

	out, err := f.uc.PlaceOrder(context.Background(), in)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), out.ID)
	assert.Equal(t, float64(450), out.TotalAmount)
	assert.Equal(t, float64(50), out.DeliveryCharges)
	assert.Equal(t, string(model.OrderStatusPending), out.Status)
	assert.Equal(t, 2, len(out.Items))

	f.orders.AssertExpectations(t)
	f.items.AssertExpectations(t)
	f.inventory.AssertExpectations(t)
}

func TestOrderUsecase_PlaceOrder_ScalingDelivery(t *testing.T) {
	f := newOrderFixture()

	f.products.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, Name: "A", Stock: 10, Price: 100,
			DeliveryCharges: 200, IncreaseDeliveryWithQty: true}, nil)
	f.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(1), int64(5)).Return(true, nil)

	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		//200×5=1000が加算される
		return o.DeliveryCharges == 1000 && o.TotalAmount == 1500
	})).Return(int64(1), nil)
	f.items.On("CreateBulk", mock.Anything, int64(1), mock.Anything).Return(nil)

	in := validOrderInput([]usecase.PlaceOrderItemInput{{ProductID: 1, Quantity: 5, Price: 100}}, 500)
	out, err := f.uc.PlaceOrder(context.Background(), in)

	assert.NoError(t, err)
	assert.Equal(t, float64(1000), out.DeliveryCharges)
	f.orders.AssertExpectations(t)
}

func TestOrderUsecase_PlaceOrder_TxConflict(t *testing.T) {
	f := newOrderFixture()
	f.tx.ForcedErr = repo.ErrTxConflict

	in := validOrderInput([]usecase.PlaceOrderItemInput{{ProductID: 1, Quantity: 1, Price: 100}}, 100)
	_, err := f.uc.PlaceOrder(context.Background(), in)

	he, ok := usecase.AsHTTPError(err)
	if !ok {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	assert.Equal(t, 409, he.Status)
	assertErrContains(t, err, "retry")
}

// =====================
// ListOrders
// =====================

func TestOrderUsecase_ListOrders_ResolvesProducts(t *testing.T) {
	f := newOrderFixture()

	f.orders.On("ListAll", mock.Anything).Return([]model.Order{
		{ID: 2, Status: model.OrderStatusPending, TotalAmount: 450},
	}, nil)

	f.items.On("ListByOrderID", mock.Anything, int64(2)).Return([]model.OrderItem{
		{ID: 1, OrderID: 2, ProductID: 1, Quantity: 2, PriceSnapshot: 100},
		{ID: 2, OrderID: 2, ProductID: 99, Quantity: 1, PriceSnapshot: 200},
	}, nil)

	//1は現存、99は削除済み
	f.products.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, Name: "A", Price: 120}, nil)
	f.products.On("FindByID", mock.Anything, int64(99)).
		Return(model.Product{}, repo.ErrNotFound)

	outs, err := f.uc.ListOrders(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, len(outs))
	assert.Equal(t, 2, len(outs[0].Items))

	//現存商品は現在情報付き、スナップショット価格はそのまま
	assert.NotNil(t, outs[0].Items[0].Product)
	assert.Equal(t, "A", outs[0].Items[0].Product.Name)
	assert.Equal(t, float64(100), outs[0].Items[0].Price)

	//削除済み商品はnullで返す（エラーにしない）
	assert.Nil(t, outs[0].Items[1].Product)
	assert.Equal(t, float64(200), outs[0].Items[1].Price)
}

// =====================
// UpdateStatus
// =====================

func TestOrderUsecase_UpdateStatus_InvalidValue(t *testing.T) {
	f := newOrderFixture()

	err := f.uc.UpdateStatus(context.Background(), 1, 10, usecase.UpdateOrderStatusInput{Status: "Refunded"})
	assertErrContains(t, err, "invalid status")
}

func TestOrderUsecase_UpdateStatus_TerminalGuard(t *testing.T) {
	f := newOrderFixture()

	f.orders.On("FindByID", mock.Anything, int64(10)).
		Return(model.Order{ID: 10, Status: model.OrderStatusDelivered}, nil)

	err := f.uc.UpdateStatus(context.Background(), 1, 10, usecase.UpdateOrderStatusInput{Status: "Cancelled"})
	assertErrContains(t, err, "cannot change delivered order")
	f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderUsecase_UpdateStatus_IllegalTransition(t *testing.T) {
	f := newOrderFixture()

	f.orders.On("FindByID", mock.Anything, int64(10)).
		Return(model.Order{ID: 10, Status: model.OrderStatusPending}, nil)

	err := f.uc.UpdateStatus(context.Background(), 1, 10, usecase.UpdateOrderStatusInput{Status: "Delivered"})
	assertErrContains(t, err, "cannot change status from Pending to Delivered")
}

func TestOrderUsecase_UpdateStatus_SameStatusIsNoop(t *testing.T) {
	f := newOrderFixture()

	f.orders.On("FindByID", mock.Anything, int64(10)).
		Return(model.Order{ID: 10, Status: model.OrderStatusPending}, nil)

	err := f.uc.UpdateStatus(context.Background(), 1, 10, usecase.UpdateOrderStatusInput{Status: "Pending"})
	assert.NoError(t, err)
	f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderUsecase_UpdateStatus_Success_WritesAudit(t *testing.T) {
	f := newOrderFixture()

	f.orders.On("FindByID", mock.Anything, int64(10)).
		Return(model.Order{ID: 10, Status: model.OrderStatusPending}, nil)
	f.orders.On("UpdateStatus", mock.Anything, int64(10), model.OrderStatusProcessing).Return(nil)
	f.audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionUpdateOrderStatus &&
			l.ResourceID == 10 &&
			l.ActorAdminID == 1
	})).Return(nil)

	err := f.uc.UpdateStatus(context.Background(), 1, 10, usecase.UpdateOrderStatusInput{Status: "Processing"})
	assert.NoError(t, err)

	f.orders.AssertExpectations(t)
	f.audit.AssertExpectations(t)
}

func TestOrderUsecase_UpdateStatus_CancelFromShipped(t *testing.T) {
	f := newOrderFixture()

	//Cancelledは終端以外ならどこからでも可
	f.orders.On("FindByID", mock.Anything, int64(10)).
		Return(model.Order{ID: 10, Status: model.OrderStatusShipped}, nil)
	f.orders.On("UpdateStatus", mock.Anything, int64(10), model.OrderStatusCancelled).Return(nil)
	f.audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	err := f.uc.UpdateStatus(context.Background(), 1, 10, usecase.UpdateOrderStatusInput{Status: "Cancelled"})
	assert.NoError(t, err)
}

// =====================
// DeleteOrder
// =====================

func TestOrderUsecase_DeleteOrder_NotFound(t *testing.T) {
	f := newOrderFixture()

	f.orders.On("FindByID", mock.Anything, int64(10)).Return(model.Order{}, repo.ErrNotFound)

	err := f.uc.DeleteOrder(context.Background(), 1, 10)
	assertErrContains(t, err, "order not found")
}

func TestOrderUsecase_DeleteOrder_Success(t *testing.T) {
	f := newOrderFixture()

	f.orders.On("FindByID", mock.Anything, int64(10)).
		Return(model.Order{ID: 10, Status: model.OrderStatusPending, TotalAmount: 450}, nil)
	f.items.On("DeleteByOrderID", mock.Anything, int64(10)).Return(nil)
	f.orders.On("Delete", mock.Anything, int64(10)).Return(nil)
	f.audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionDeleteOrder && l.ResourceID == 10
	})).Return(nil)

	err := f.uc.DeleteOrder(context.Background(), 1, 10)
	assert.NoError(t, err)

	f.orders.AssertExpectations(t)
	f.items.AssertExpectations(t)
}

// =====================
// QuoteDelivery
// =====================

func TestOrderUsecase_QuoteDelivery(t *testing.T) {
	f := newOrderFixture()

	//tx外の読み取りなのでtxモックは呼ばれない
	f.products.On("FindByID", mock.Anything, int64(1)).
		Return(model.Product{ID: 1, DeliveryCharges: 50}, nil)
	f.products.On("FindByID", mock.Anything, int64(2)).
		Return(model.Product{ID: 2, DeliveryCharges: 200, IncreaseDeliveryWithQty: true}, nil)

	out, err := f.uc.QuoteDelivery(context.Background(), []usecase.QuoteItemInput{
		{ProductID: 1, Quantity: 3},
		{ProductID: 2, Quantity: 2},
	})

	assert.NoError(t, err)
	//50 + 200×2
	assert.Equal(t, float64(450), out.DeliveryCharges)
	f.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestOrderUsecase_QuoteDelivery_ProductGone(t *testing.T) {
	f := newOrderFixture()

	f.products.On("FindByID", mock.Anything, int64(5)).Return(model.Product{}, repo.ErrNotFound)

	_, err := f.uc.QuoteDelivery(context.Background(), []usecase.QuoteItemInput{{ProductID: 5, Quantity: 1}})
	assertErrContains(t, err, "product not found: 5")
}
