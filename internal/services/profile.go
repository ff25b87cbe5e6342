package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"foodorder/internal/authz"
	"foodorder/internal/models"
)

// AddressInput is an address body. Pointer fields are optional on update.
type AddressInput struct {
	Street    *string
	Area      *string
	District  *string
	City      *string
	IsDefault *bool
}

type ProfileService struct {
	users UserStore
	now   func() time.Time
}

func NewProfileService(users UserStore) *ProfileService {
	return &ProfileService{users: users, now: time.Now}
}

func (s *ProfileService) load(ctx context.Context, p *models.Principal) (*models.User, error) {
	if p == nil {
		return nil, unauthenticated("Access denied. No token provided.")
	}
	user, err := s.users.FindUser(ctx, p.ID)
	if errors.Is(err, ErrNoRecord) {
		return nil, notFound("User not found")
	}
	if err != nil {
		return nil, internal("Failed to fetch profile", err)
	}
	if user.Addresses == nil {
		user.Addresses = []models.Address{}
	}
	return user, nil
}

func (s *ProfileService) Get(ctx context.Context, p *models.Principal) (*models.User, error) {
	return s.load(ctx, p)
}

// Update overwrites the given profile fields. Phone and email stay unique and
// at least one of them remains set.
func (s *ProfileService) Update(ctx context.Context, p *models.Principal, patch ProfilePatch) (*models.User, error) {
	user, err := s.load(ctx, p)
	if err != nil {
		return nil, err
	}

	trim := func(v *string) *string {
		if v == nil {
			return nil
		}
		t := strings.TrimSpace(*v)
		return &t
	}
	patch.Name = trim(patch.Name)
	patch.Phone = trim(patch.Phone)
	patch.Email = trim(patch.Email)
	if patch.Email != nil {
		lower := strings.ToLower(*patch.Email)
		patch.Email = &lower
	}
	patch.PreferredLanguage = trim(patch.PreferredLanguage)

	phone, email := user.Phone, user.Email
	if patch.Phone != nil {
		phone = *patch.Phone
	}
	if patch.Email != nil {
		email = *patch.Email
	}
	if phone == "" && email == "" {
		return nil, validationError("Either phone or email is required", "phone", "email")
	}

	newPhone, newEmail := "", ""
	if patch.Phone != nil && *patch.Phone != user.Phone {
		newPhone = *patch.Phone
	}
	if patch.Email != nil && *patch.Email != user.Email {
		newEmail = *patch.Email
	}
	if newPhone != "" || newEmail != "" {
		taken, err := s.users.IdentityTaken(ctx, newPhone, newEmail, user.ID)
		if err != nil {
			return nil, internal("Failed to update profile", err)
		}
		if taken {
			return nil, conflict("Phone number or email already exists")
		}
	}

	updated, err := s.users.UpdateUserProfile(ctx, user.ID, patch, s.now())
	switch {
	case errors.Is(err, ErrDuplicate):
		return nil, conflict("Phone number or email already exists")
	case errors.Is(err, ErrNoRecord):
		return nil, notFound("User not found")
	case err != nil:
		return nil, internal("Failed to update profile", err)
	}
	if updated.Addresses == nil {
		updated.Addresses = []models.Address{}
	}
	return updated, nil
}

func (s *ProfileService) loadCustomer(ctx context.Context, p *models.Principal) (*models.User, error) {
	if err := requireCapability(p, authz.ManageAddresses, "Access denied. Customers only."); err != nil {
		return nil, err
	}
	return s.load(ctx, p)
}

func (s *ProfileService) ListAddresses(ctx context.Context, p *models.Principal) ([]models.Address, error) {
	user, err := s.loadCustomer(ctx, p)
	if err != nil {
		return nil, err
	}
	return user.Addresses, nil
}

func (in AddressInput) apply(a *models.Address) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&a.Street, in.Street)
	set(&a.Area, in.Area)
	set(&a.District, in.District)
	set(&a.City, in.City)
}

func validateAddress(a models.Address) error {
	missing := make([]string, 0)
	if a.Street == "" {
		missing = append(missing, "street")
	}
	if a.Area == "" {
		missing = append(missing, "area")
	}
	if a.City == "" {
		missing = append(missing, "city")
	}
	if len(missing) > 0 {
		return validationError("missing required fields", missing...)
	}
	return nil
}

// makeDefault marks addresses[idx] as the only default address.
func makeDefault(addresses []models.Address, idx int) {
	for i := range addresses {
		addresses[i].IsDefault = i == idx
	}
}

func (s *ProfileService) saveAddresses(ctx context.Context, user *models.User) ([]models.Address, error) {
	if err := s.users.SetAddresses(ctx, user.ID, user.Addresses, s.now()); err != nil {
		if errors.Is(err, ErrNoRecord) {
			return nil, notFound("User not found")
		}
		return nil, internal("Failed to save address", err)
	}
	return user.Addresses, nil
}

// AddAddress appends an address. The first address is always the default.
func (s *ProfileService) AddAddress(ctx context.Context, p *models.Principal, in AddressInput) ([]models.Address, error) {
	user, err := s.loadCustomer(ctx, p)
	if err != nil {
		return nil, err
	}

	addr := models.Address{ID: uuid.NewString()}
	in.apply(&addr)
	if err := validateAddress(addr); err != nil {
		return nil, err
	}

	user.Addresses = append(user.Addresses, addr)
	if len(user.Addresses) == 1 || (in.IsDefault != nil && *in.IsDefault) {
		makeDefault(user.Addresses, len(user.Addresses)-1)
	}
	return s.saveAddresses(ctx, user)
}

func findAddress(addresses []models.Address, id string) int {
	for i := range addresses {
		if addresses[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *ProfileService) UpdateAddress(ctx context.Context, p *models.Principal, addressID string, in AddressInput) ([]models.Address, error) {
	user, err := s.loadCustomer(ctx, p)
	if err != nil {
		return nil, err
	}
	idx := findAddress(user.Addresses, addressID)
	if idx < 0 {
		return nil, notFound("Address not found")
	}

	addr := user.Addresses[idx]
	in.apply(&addr)
	if err := validateAddress(addr); err != nil {
		return nil, err
	}
	user.Addresses[idx] = addr
	if in.IsDefault != nil && *in.IsDefault {
		makeDefault(user.Addresses, idx)
	}
	return s.saveAddresses(ctx, user)
}

// DeleteAddress removes an address. If it was the default, the first
// remaining address becomes the default.
func (s *ProfileService) DeleteAddress(ctx context.Context, p *models.Principal, addressID string) ([]models.Address, error) {
	user, err := s.loadCustomer(ctx, p)
	if err != nil {
		return nil, err
	}
	idx := findAddress(user.Addresses, addressID)
	if idx < 0 {
		return nil, notFound("Address not found")
	}

	wasDefault := user.Addresses[idx].IsDefault
	user.Addresses = append(user.Addresses[:idx], user.Addresses[idx+1:]...)
	if wasDefault && len(user.Addresses) > 0 {
		makeDefault(user.Addresses, 0)
	}
	return s.saveAddresses(ctx, user)
}
