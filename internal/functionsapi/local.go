package functionsapi

import (
	"context"

	"storefront/internal/domain"
	customersvc "storefront/internal/service/customer"
	ordersvc "storefront/internal/service/order"
	productsvc "storefront/internal/service/product"
)

// Local serves the same calls as Client by invoking the functions-tier services in process.
type Local struct {
	products  *productsvc.Service
	customers *customersvc.Service
	orders    *ordersvc.Service
}

func NewLocal(products *productsvc.Service, customers *customersvc.Service, orders *ordersvc.Service) *Local {
	return &Local{products: products, customers: customers, orders: orders}
}

func (l *Local) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return l.products.Get(ctx, id)
}

func (l *Local) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	return l.customers.GetByBuyerID(ctx, id)
}

func (l *Local) UpdateShippingAddress(ctx context.Context, customerID, address string) error {
	_, err := l.customers.UpdateShippingAddress(ctx, customerID, address)
	return err
}

func (l *Local) CreateOrder(ctx context.Context, req domain.OrderRequest) (*domain.Order, error) {
	return l.orders.Create(ctx, req)
}

func (l *Local) CancelOrder(ctx context.Context, orderID string) error {
	_, err := l.orders.Cancel(ctx, orderID)
	return err
}
