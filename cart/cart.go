// Package cart keeps a customer's basket per restaurant between CLI runs.
package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
)

type Item struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

// Cart is the basket for one restaurant. Lines stay in the order they were
// first added.
type Cart struct {
	RestaurantID uint
	Items        []Item
}

func New(restaurantID uint) *Cart {
	return &Cart{RestaurantID: restaurantID}
}

// Add puts one more of the item in the cart. Adding an item that is already
// there bumps its quantity instead of adding a line.
func (c *Cart) Add(id, name string, price int64) {
	for i := range c.Items {
		if c.Items[i].ID == id {
			c.Items[i].Quantity++
			return
		}
	}
	c.Items = append(c.Items, Item{ID: id, Name: name, Price: price, Quantity: 1})
}

// Remove drops the whole line for id.
func (c *Cart) Remove(id string) bool {
	for i := range c.Items {
		if c.Items[i].ID == id {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

// Subtotal is the item total in minor units, delivery excluded.
func (c *Cart) Subtotal() int64 {
	var sum int64
	for _, it := range c.Items {
		sum += it.Price * int64(it.Quantity)
	}
	return sum
}

func (c *Cart) Empty() bool { return len(c.Items) == 0 }

// Store persists carts by restaurant.
type Store interface {
	Load(restaurantID uint) (*Cart, error)
	Save(c *Cart) error
	Clear(restaurantID uint) error
}

// FileStore keeps one JSON file per restaurant under Dir.
type FileStore struct {
	Dir string
}

// SessionDir is scoped to the invoking shell, so a new terminal starts with
// empty carts.
func SessionDir() string {
	return filepath.Join(os.TempDir(), "eats-session-"+strconv.Itoa(os.Getppid()))
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

func Key(restaurantID uint) string {
	return fmt.Sprintf("cartItem-%d", restaurantID)
}

func (s *FileStore) path(restaurantID uint) string {
	return filepath.Join(s.Dir, Key(restaurantID)+".json")
}

func (s *FileStore) Load(restaurantID uint) (*Cart, error) {
	raw, err := os.ReadFile(s.path(restaurantID))
	if errors.Is(err, fs.ErrNotExist) {
		return New(restaurantID), nil
	}
	if err != nil {
		return nil, err
	}
	c := New(restaurantID)
	if err := json.Unmarshal(raw, &c.Items); err != nil {
		return nil, fmt.Errorf("read %s: %w", Key(restaurantID), err)
	}
	return c, nil
}

func (s *FileStore) Save(c *Cart) error {
	if c.Empty() {
		return s.Clear(c.RestaurantID)
	}
	if err := os.MkdirAll(s.Dir, 0o700); err != nil {
		return err
	}
	raw, err := json.Marshal(c.Items)
	if err != nil {
		return err
	}
	tmp := s.path(c.RestaurantID) + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path(c.RestaurantID))
}

func (s *FileStore) Clear(restaurantID uint) error {
	err := os.Remove(s.path(restaurantID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
