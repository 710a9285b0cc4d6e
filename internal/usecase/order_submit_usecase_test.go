package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"backoffice/internal/domain/model"
	"backoffice/internal/usecase"
)

type submitDeps struct {
	orders *OrderGatewayMock
	carts  *CartGatewayMock
	audit  *AuditRepoMock
}

func newSubmitUsecase(opts usecase.SubmitOptions) (*usecase.OrderSubmitUsecase, submitDeps) {
	d := submitDeps{
		orders: new(OrderGatewayMock),
		carts:  new(CartGatewayMock),
		audit:  new(AuditRepoMock),
	}
	uc := usecase.NewOrderSubmitUsecase(d.orders, d.carts, d.audit, nil, fixedClock{now: testNow}, opts, nil)
	return uc, d
}

func submitInput() usecase.SubmitInput {
	cart := teaCart(2)
	return usecase.SubmitInput{
		ActorID:  9,
		WizardID: "w1",
		User:     &model.User{No: "U1", Nickname: "tanaka"},
		Items:    cart.Items,
		Total:    cart.TotalPrice,
		Form:     usecase.OrderForm{ShipAddress: "123 Main St", Remark: "leave at door"},
	}
}

func TestOrderSubmit_Success(t *testing.T) {
	uc, d := newSubmitUsecase(usecase.SubmitOptions{RollbackOnItemFailure: true})

	d.orders.On("CreateOrder", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.UserNo == "U1" &&
			o.ShipAddress == "123 Main St" &&
			o.Remark == "leave at door" &&
			o.OrderStatus == model.OrderStatusOrdered &&
			o.OrderTotal.Equal(model.MoneyFromInt(100))
	})).Return(model.Order{No: "O1"}, nil).Once()

	var sent []model.OrderItem
	d.orders.On("CreateOrderItems", mock.Anything, "O1", mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(2).([]model.OrderItem) }).
		Return(model.BatchResult{Success: true, Count: 1}, nil).Once()
	d.audit.On("Create", mock.Anything, auditAction(model.AuditActionCreateOrder)).Return(nil).Once()

	res, err := uc.Submit(context.Background(), submitInput())
	require.NoError(t, err)
	assert.Equal(t, "O1", res.OrderNo)
	assert.Equal(t, 1, res.ItemCount)
	assert.True(t, res.Total.Equal(model.MoneyFromInt(100)))

	require.Len(t, sent, 1)
	it := sent[0]
	assert.Equal(t, "O1", it.OrderNo)
	assert.Equal(t, "P1", it.ProductNo)
	assert.Equal(t, int64(2), it.Quantity)
	assert.True(t, it.UnitPrice.Equal(model.MoneyFromInt(50)))
	assert.True(t, it.TotalPrice.Equal(model.MoneyFromInt(100)))
	assert.True(t, it.FinalPrice.Equal(model.MoneyFromInt(100)))
	assert.True(t, it.DiscountAmount.IsZero())
	assert.Equal(t, model.OrderItemStatusPending, it.Status)
	require.NotNil(t, it.ProductSnapshot)
	assert.Equal(t, "Green Tea", it.ProductSnapshot.Name)

	d.carts.AssertNotCalled(t, "ClearCart", mock.Anything, mock.Anything)
	d.orders.AssertExpectations(t)
	d.audit.AssertExpectations(t)
}

func TestOrderSubmit_BatchSuccessFalseIsFailure(t *testing.T) {
	uc, d := newSubmitUsecase(usecase.SubmitOptions{RollbackOnItemFailure: true})

	d.orders.On("CreateOrder", mock.Anything, mock.Anything).Return(model.Order{No: "O1"}, nil).Once()
	d.orders.On("CreateOrderItems", mock.Anything, "O1", mock.Anything).
		Return(model.BatchResult{Success: false, Message: "product missing"}, nil).Once()
	d.orders.On("DeleteOrder", mock.Anything, "O1").Return(nil).Once()
	d.audit.On("Create", mock.Anything, auditAction(model.AuditActionCreateOrderFailed)).Return(nil).Once()
	d.audit.On("Create", mock.Anything, auditAction(model.AuditActionRollbackOrder)).Return(nil).Once()

	_, err := uc.Submit(context.Background(), submitInput())
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, he.Status)
	assert.Equal(t, "create order failed", he.Message)

	d.orders.AssertExpectations(t)
	d.audit.AssertExpectations(t)
}

func TestOrderSubmit_RollbackFailureRecordsOrphan(t *testing.T) {
	uc, d := newSubmitUsecase(usecase.SubmitOptions{RollbackOnItemFailure: true})

	d.orders.On("CreateOrder", mock.Anything, mock.Anything).Return(model.Order{No: "O1"}, nil).Once()
	d.orders.On("CreateOrderItems", mock.Anything, "O1", mock.Anything).
		Return(model.BatchResult{}, errors.New("connection reset")).Once()
	d.orders.On("DeleteOrder", mock.Anything, "O1").Return(errors.New("connection reset")).Once()
	d.audit.On("Create", mock.Anything, auditAction(model.AuditActionCreateOrderFailed)).Return(nil).Once()
	d.audit.On("Create", mock.Anything, auditAction(model.AuditActionOrphanedOrder)).Return(nil).Once()

	_, err := uc.Submit(context.Background(), submitInput())
	assertErrContains(t, err, "create order failed")

	d.orders.AssertExpectations(t)
	d.audit.AssertExpectations(t)
}

func TestOrderSubmit_RollbackDisabledKeepsOrder(t *testing.T) {
	uc, d := newSubmitUsecase(usecase.SubmitOptions{RollbackOnItemFailure: false})

	d.orders.On("CreateOrder", mock.Anything, mock.Anything).Return(model.Order{No: "O1"}, nil).Once()
	d.orders.On("CreateOrderItems", mock.Anything, "O1", mock.Anything).
		Return(model.BatchResult{Success: false}, nil).Once()
	d.audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := uc.Submit(context.Background(), submitInput())
	assertErrContains(t, err, "create order failed")

	d.orders.AssertNotCalled(t, "DeleteOrder", mock.Anything, mock.Anything)
	d.audit.AssertCalled(t, "Create", mock.Anything, auditAction(model.AuditActionOrphanedOrder))
}

func TestOrderSubmit_ValidationBeforeNetwork(t *testing.T) {
	cases := []struct {
		name string
		edit func(in *usecase.SubmitInput)
		want string
	}{
		{"no user", func(in *usecase.SubmitInput) { in.User = nil }, "no user selected"},
		{"empty cart", func(in *usecase.SubmitInput) { in.Items = nil }, "cart is empty"},
		{"no address", func(in *usecase.SubmitInput) { in.Form.ShipAddress = "   " }, "shipAddress is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			uc, d := newSubmitUsecase(usecase.SubmitOptions{})
			in := submitInput()
			tc.edit(&in)

			_, err := uc.Submit(context.Background(), in)
			he, ok := usecase.AsHTTPError(err)
			require.True(t, ok)
			assert.Equal(t, http.StatusBadRequest, he.Status)
			assert.Equal(t, tc.want, he.Message)

			d.orders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
			d.audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestOrderSubmit_CreateOrderFails(t *testing.T) {
	uc, d := newSubmitUsecase(usecase.SubmitOptions{RollbackOnItemFailure: true})

	d.orders.On("CreateOrder", mock.Anything, mock.Anything).Return(model.Order{}, errors.New("503")).Once()
	d.audit.On("Create", mock.Anything, auditAction(model.AuditActionCreateOrderFailed)).Return(nil).Once()

	_, err := uc.Submit(context.Background(), submitInput())
	assertErrContains(t, err, "create order failed")

	d.orders.AssertNotCalled(t, "CreateOrderItems", mock.Anything, mock.Anything, mock.Anything)
	d.orders.AssertNotCalled(t, "DeleteOrder", mock.Anything, mock.Anything)
}

func TestOrderSubmit_AuditFailureDoesNotChangeOutcome(t *testing.T) {
	uc, d := newSubmitUsecase(usecase.SubmitOptions{ClearCartAfterSubmit: true})

	d.orders.On("CreateOrder", mock.Anything, mock.Anything).Return(model.Order{No: "O1"}, nil).Once()
	d.orders.On("CreateOrderItems", mock.Anything, "O1", mock.Anything).
		Return(model.BatchResult{Success: true, Count: 1}, nil).Once()
	d.audit.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))
	d.carts.On("ClearCart", mock.Anything, "U1").Return(errors.New("timeout")).Once()

	res, err := uc.Submit(context.Background(), submitInput())
	require.NoError(t, err)
	assert.Equal(t, "O1", res.OrderNo)
	d.carts.AssertExpectations(t)
}
