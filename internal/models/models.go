package models

import (
	"time"
)

type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	IsAdmin      bool      `json:"isAdmin"`
	Balance      float64   `json:"balance"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Product struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	OriginalPrice float64   `json:"originalPrice,omitempty"` // shown struck-through when > price
	Images        []string  `json:"images"`
	Quantity      int       `json:"quantity"`
	Category      string    `json:"category"`
	Available     bool      `json:"available"`
	Preorder      bool      `json:"preorder"`
	Rare          bool      `json:"rare"`
	EasyCare      bool      `json:"easyCare"`
	Labels        []string  `json:"labels"`
	DeliveryCost  float64   `json:"deliveryCost"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// OrderItem is a frozen snapshot of a product at order time. Later product
// edits must not change what the customer sees on an old order.
type OrderItem struct {
	ProductID int     `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type Order struct {
	ID                int           `json:"id"`
	UserID            int           `json:"userId"`
	Items             []OrderItem   `json:"items"`
	TotalAmount       float64       `json:"totalAmount"`
	DeliveryAmount    float64       `json:"deliveryAmount"`
	FullName          string        `json:"fullName"`
	Address           string        `json:"address"`
	Phone             string        `json:"phone"`
	DeliveryType      string        `json:"deliveryType"`
	PaymentMethod     string        `json:"paymentMethod"`
	PaymentStatus     PaymentStatus `json:"paymentStatus"`
	Status            OrderStatus   `json:"status"`
	PromoCode         string        `json:"promoCode,omitempty"`
	Discount          float64       `json:"discount"`
	PaymentProofURL   string        `json:"paymentProofUrl,omitempty"`
	TrackingNumber    string        `json:"trackingNumber,omitempty"`
	DeliveryDate      string        `json:"deliveryDate,omitempty"`
	AdminComment      string        `json:"adminComment,omitempty"`
	QuantitiesReduced bool          `json:"quantitiesReduced"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

type PromoCode struct {
	ID             int          `json:"id"`
	Code           string       `json:"code"` // stored upper-case
	DiscountType   DiscountType `json:"discountType"`
	DiscountValue  float64      `json:"discountValue"`
	MinOrderAmount float64      `json:"minOrderAmount"`
	StartDate      time.Time    `json:"startDate"`
	EndDate        time.Time    `json:"endDate"`
	MaxUses        int          `json:"maxUses"` // 0 = unlimited
	CurrentUses    int          `json:"currentUses"`
	IsActive       bool         `json:"isActive"`
	CreatedAt      time.Time    `json:"createdAt"`
}

type PromoCodeUse struct {
	ID          int       `json:"id"`
	PromoCodeID int       `json:"promoCodeId"`
	UserID      int       `json:"userId"`
	OrderID     int       `json:"orderId"`
	Discount    float64   `json:"discount"`
	UsedAt      time.Time `json:"usedAt"`
}

type Review struct {
	ID        int       `json:"id"`
	UserID    int       `json:"userId"`
	UserName  string    `json:"userName"`
	ProductID int       `json:"productId"`
	Rating    int       `json:"rating"`
	Text      string    `json:"text"`
	Images    []string  `json:"images"`
	Approved  bool      `json:"approved"`
	CreatedAt time.Time `json:"createdAt"`
}

// PaymentDetails is a single-row entity shown on the checkout page.
type PaymentDetails struct {
	CardNumber   string `json:"cardNumber"`
	CardHolder   string `json:"cardHolder"`
	BankName     string `json:"bankName"`
	PhoneNumber  string `json:"phoneNumber"`
	Instructions string `json:"instructions"`
}

type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Notification struct {
	ID        int       `json:"id"`
	UserID    int       `json:"userId"`
	OrderID   int       `json:"orderId,omitempty"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}
