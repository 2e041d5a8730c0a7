package models

import (
	"time"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"      json:"id"`
	Username     string    `gorm:"size:50;uniqueIndex;not null"  json:"username"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:128;not null"             json:"-"`
	IsAdmin      bool      `gorm:"not null;default:false"        json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	CartItems     []CartItem     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Orders        []Order        `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Conversations []Conversation `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

type Category struct {
	ID   uint   `gorm:"primaryKey;autoIncrement"     json:"id"`
	Name string `gorm:"size:50;uniqueIndex;not null" json:"name"`
}

type Product struct {
	SKU         string    `gorm:"size:32;primaryKey"      json:"sku"`
	Name        string    `gorm:"size:100;index;not null" json:"name"`
	PriceCents  int64     `gorm:"not null"                json:"price_cents"`
	Stock       int       `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	Description string    `gorm:"type:text"               json:"description,omitempty"`
	ImageURL    string    `gorm:"size:255"                json:"image_url,omitempty"`
	CategoryID  *uint     `json:"category_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CartItem struct {
	ID       uint      `gorm:"primaryKey;autoIncrement"               json:"id"`
	UserID   uint      `gorm:"not null;uniqueIndex:idx_cart_user_sku" json:"user_id"`
	SKU      string    `gorm:"size:32;not null;uniqueIndex:idx_cart_user_sku" json:"sku"`
	Quantity int       `gorm:"not null;default:1;check:quantity > 0"  json:"quantity"`
	AddedAt  time.Time `gorm:"autoCreateTime"                         json:"added_at"`
}

const (
	OrderStatusPending   = "PENDING"
	OrderStatusPaid      = "PAID"
	OrderStatusCancelled = "CANCELLED"
	OrderStatusShipped   = "SHIPPED"
)

type Order struct {
	ID         uint        `gorm:"primaryKey;autoIncrement"         json:"order_id"`
	UserID     uint        `gorm:"index;not null"                   json:"user_id"`
	TotalCents int64       `gorm:"not null"                         json:"total_cents"`
	Status     string      `gorm:"size:16;not null;default:PENDING" json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
	Items      []OrderItem `gorm:"constraint:OnDelete:CASCADE"      json:"items"`
}

// OrderItem freezes quantity and unit price at the moment of purchase;
// later product price changes must not affect placed orders.
type OrderItem struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   uint   `gorm:"index;not null"           json:"order_id"`
	SKU       string `gorm:"size:32;not null"         json:"sku"`
	Quantity  int    `gorm:"not null"                 json:"quantity"`
	UnitPrice int64  `gorm:"not null"                 json:"unit_price"`
}

const (
	SenderUser = "user"
	SenderBot  = "bot"
)

type Conversation struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"    json:"conv_id"`
	UserID    uint      `gorm:"index;not null"              json:"user_id"`
	SessionID string    `gorm:"size:64;not null"            json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
	Messages  []Message `gorm:"constraint:OnDelete:CASCADE" json:"messages,omitempty"`
}

type Message struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"message_id"`
	ConversationID uint      `gorm:"index;not null"           json:"conversation_id"`
	Sender         string    `gorm:"size:8;not null"          json:"sender"`
	Content        string    `gorm:"type:text;not null"       json:"content"`
	CreatedAt      time.Time `gorm:"index"                    json:"created_at"`
}
