package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"momo-telegram/db"
	"momo-telegram/models"

	"github.com/jackc/pgx/v5"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrIncompleteOrder = errors.New("name and phone are required")
	ErrSubmitInFlight  = errors.New("order is already being submitted")
)

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, order models.OrderRequest) error
}

type CartStore interface {
	GetCart(ctx context.Context, userID int64) (*Cart, error)
	SaveCart(ctx context.Context, userID int64, cart *Cart) error
	DeleteCart(ctx context.Context, userID int64) error
}

type ContactStore interface {
	LastContact(ctx context.Context, userID int64) (*models.Contact, error)
	SaveContact(ctx context.Context, userID int64, c models.Contact) error
}

// PgStore backs carts and contacts with db.Pool.
type PgStore struct{}

func (PgStore) GetCart(ctx context.Context, userID int64) (*Cart, error) { return GetCart(ctx, userID) }
func (PgStore) SaveCart(ctx context.Context, userID int64, cart *Cart) error {
	return SaveCart(ctx, userID, cart)
}
func (PgStore) DeleteCart(ctx context.Context, userID int64) error { return DeleteCart(ctx, userID) }

func (PgStore) LastContact(ctx context.Context, userID int64) (*models.Contact, error) {
	return GetLastContact(ctx, userID)
}
func (PgStore) SaveContact(ctx context.Context, userID int64, c models.Contact) error {
	return SaveLastContact(ctx, userID, c)
}

// GetLastContact returns nil when the customer has never ordered.
func GetLastContact(ctx context.Context, tgUserID int64) (*models.Contact, error) {
	var c models.Contact
	err := db.Pool.QueryRow(ctx, `
		SELECT name, phone FROM customer_contacts WHERE tg_user_id = $1`,
		tgUserID,
	).Scan(&c.Name, &c.Phone)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func SaveLastContact(ctx context.Context, tgUserID int64, c models.Contact) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO customer_contacts (tg_user_id, name, phone, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (tg_user_id) DO UPDATE SET name = EXCLUDED.name, phone = EXCLUDED.phone, updated_at = now()`,
		tgUserID, c.Name, c.Phone,
	)
	return err
}

// Checkout turns a stored cart into a backend order.
type Checkout struct {
	placer   OrderPlacer
	carts    CartStore
	contacts ContactStore
	inFlight sync.Map // userID -> struct{}
}

func NewCheckout(placer OrderPlacer, carts CartStore, contacts ContactStore) *Checkout {
	return &Checkout{placer: placer, carts: carts, contacts: contacts}
}

// BuildOrderRequest validates the contact and renders the cart summary.
func BuildOrderRequest(cart *Cart, contact models.Contact) (models.OrderRequest, error) {
	if cart == nil || cart.Empty() {
		return models.OrderRequest{}, ErrEmptyCart
	}
	name := strings.TrimSpace(contact.Name)
	phone := strings.TrimSpace(contact.Phone)
	if name == "" || phone == "" {
		return models.OrderRequest{}, ErrIncompleteOrder
	}
	return models.OrderRequest{Items: cart.Summary(), Name: name, Phone: phone}, nil
}

// SubmitOrder posts the user's cart. The ordered lines are removed and the
// contact remembered only after the backend accepts the order; on failure
// the cart stays so the user can retry. Anything the user put in the cart
// while the order was in flight is kept.
func (c *Checkout) SubmitOrder(ctx context.Context, userID int64, contact models.Contact) (models.OrderRequest, error) {
	if _, busy := c.inFlight.LoadOrStore(userID, struct{}{}); busy {
		return models.OrderRequest{}, ErrSubmitInFlight
	}
	defer c.inFlight.Delete(userID)

	cart, err := c.carts.GetCart(ctx, userID)
	if err != nil {
		return models.OrderRequest{}, fmt.Errorf("load cart: %w", err)
	}
	req, err := BuildOrderRequest(cart, contact)
	if err != nil {
		return models.OrderRequest{}, err
	}
	if err := c.placer.PlaceOrder(ctx, req); err != nil {
		return req, fmt.Errorf("place order: %w", err)
	}

	if err := c.removeOrdered(ctx, userID, cart); err != nil {
		log.Printf("clear cart after order user_id=%d: %v", userID, err)
	}
	if err := c.contacts.SaveContact(ctx, userID, models.Contact{Name: req.Name, Phone: req.Phone}); err != nil {
		log.Printf("save contact user_id=%d: %v", userID, err)
	}
	return req, nil
}

func (c *Checkout) removeOrdered(ctx context.Context, userID int64, ordered *Cart) error {
	current, err := c.carts.GetCart(ctx, userID)
	if err != nil {
		return err
	}
	current.Subtract(ordered)
	if current.Empty() {
		return c.carts.DeleteCart(ctx, userID)
	}
	return c.carts.SaveCart(ctx, userID, current)
}

func (c *Checkout) LastContact(ctx context.Context, userID int64) (*models.Contact, error) {
	return c.contacts.LastContact(ctx, userID)
}
