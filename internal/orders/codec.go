package orders

import (
	"github.com/rosie073/shopfinalcross/internal/docstore"
	"github.com/rosie073/shopfinalcross/internal/domain"
)

func encodeOrder(o domain.Order) map[string]any {
	items := make([]any, 0, len(o.Items))
	for _, l := range o.Items {
		items = append(items, map[string]any{
			"id":    l.ProductID,
			"name":  l.Name,
			"price": l.Price.InexactFloat64(),
			"img":   l.ImageRef,
			"qty":   l.Qty,
		})
	}

	data := map[string]any{
		"userId":        o.UserID,
		"email":         o.Email,
		"items":         items,
		"subtotal":      o.Subtotal.InexactFloat64(),
		"discount":      o.Discount.InexactFloat64(),
		"total":         o.Total.InexactFloat64(),
		"status":        string(o.Status),
		"paymentMethod": string(o.PaymentMethod),
		"billing": map[string]any{
			"name":    o.Billing.Name,
			"phone":   o.Billing.Phone,
			"address": o.Billing.Address,
		},
		"shipping":  o.Shipping,
		"createdAt": o.CreatedAt,
	}
	if o.CouponCode != "" {
		data["coupon"] = o.CouponCode
	} else {
		data["coupon"] = nil
	}
	return data
}

func decodeAll(collection, owner string, docs []docstore.Document) []domain.Order {
	out := make([]domain.Order, 0, len(docs))
	for _, d := range docs {
		out = append(out, decodeOrder(collection, owner, d))
	}
	return out
}

// decodeOrder tolerates older record shapes: flat billing fields, a
// couponCode key, a missing userId on legacy records and unknown statuses.
func decodeOrder(collection, owner string, d docstore.Document) domain.Order {
	data := d.Data

	status, ok := domain.ParseOrderStatus(docstore.String(data, "status"))
	if !ok {
		status = domain.OrderStatus(docstore.String(data, "status"))
	}
	payment, _ := domain.ParsePaymentMethod(docstore.String(data, "paymentMethod"))

	billingSrc := docstore.Map(data, "billing")
	if billingSrc == nil {
		billingSrc = data
	}

	coupon := docstore.String(data, "coupon")
	if coupon == "" {
		coupon = docstore.String(data, "couponCode")
	}

	userID := docstore.String(data, "userId")
	if userID == "" {
		userID = owner
	}

	shipping := docstore.String(data, "shipping")
	if shipping == "" {
		shipping = domain.FreeShipping
	}

	items := make([]domain.CartLine, 0)
	for _, r := range docstore.Maps(data, "items") {
		items = append(items, domain.CartLine{
			ProductID: domain.NormalizeID(r["id"]),
			Name:      docstore.String(r, "name"),
			Price:     docstore.Decimal(r, "price"),
			ImageRef:  docstore.String(r, "img"),
			Qty:       docstore.Int(r, "qty"),
		})
	}

	return domain.Order{
		ID:            d.ID,
		Path:          docstore.Ref{Collection: collection, ID: d.ID}.Path(),
		UserID:        userID,
		Items:         items,
		Subtotal:      docstore.Decimal(data, "subtotal"),
		Discount:      docstore.Decimal(data, "discount"),
		Total:         docstore.Decimal(data, "total"),
		Status:        status,
		PaymentMethod: payment,
		Billing: domain.Billing{
			Name:    docstore.String(billingSrc, "name"),
			Phone:   docstore.String(billingSrc, "phone"),
			Address: docstore.String(billingSrc, "address"),
		},
		CouponCode: coupon,
		Email:      docstore.String(data, "email"),
		Shipping:   shipping,
		CreatedAt:  docstore.Time(data, "createdAt"),
		UpdatedAt:  docstore.Time(data, "updatedAt"),
	}
}
