package domain

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Role types
const (
	RoleCustomer = "customer"
	RoleStaff    = "staff"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailTaken      = errors.New("email already registered")
	ErrAddressNotFound = errors.New("address not found")
)

// User represents an account. The email doubles as the login username,
// so it must stay unique.
type User struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"not null"`
	Email     string         `json:"email" gorm:"uniqueIndex;not null"`
	Phone     string         `json:"phone"`
	Password  string         `json:"-" gorm:"not null"`
	Role      string         `json:"role" gorm:"not null;default:'customer'"`
	IsActive  bool           `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

// IsStaff checks if the user can access the admin surface
func (u *User) IsStaff() bool {
	return u.Role == RoleStaff
}

// Address is one entry in a user's address book. At most one address
// per user may have IsDefault set; the repository enforces the toggle
// transactionally.
type Address struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	Line1     string    `json:"address_line_1" gorm:"not null"`
	Line2     string    `json:"address_line_2"`
	City      string    `json:"city" gorm:"not null"`
	State     string    `json:"state" gorm:"not null"`
	ZipCode   string    `json:"zip_code" gorm:"not null"`
	Country   string    `json:"country" gorm:"not null"`
	IsDefault bool      `json:"is_default" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name
func (Address) TableName() string {
	return "addresses"
}

// UserRepository defines the contract for user data access
type UserRepository interface {
	Create(user *User) error
	FindByID(id uint) (*User, error)
	FindByEmail(email string) (*User, error)
	FindCustomers(limit, offset int) ([]User, error)
	Update(user *User) error
	CountCustomers() (int64, error)
}

// AddressRepository defines the contract for address book access
type AddressRepository interface {
	Create(address *Address) error
	FindByID(id uint) (*Address, error)
	FindByUser(userID uint) ([]Address, error)
	// MakeDefault unsets every default flag for the owner and sets the
	// given address as default, all inside one transaction.
	MakeDefault(userID, addressID uint) error
}
