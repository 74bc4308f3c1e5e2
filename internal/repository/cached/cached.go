// Package cached wraps repositories with read-through TTL caches. Reads of
// whole collections are served from memory; every write goes to the inner
// repository first and then drops the affected cache entries.
package cached

import (
	"context"
	"fmt"
	"slices"
	"time"

	"blackrent-backend/internal/cache"
	"blackrent-backend/internal/domain"
	"blackrent-backend/internal/logger"
	"blackrent-backend/internal/repository"
)

const (
	rentalsKey   = "rentals_all"
	customersKey = "customers_all"
)

func vehiclesKey(includeRemoved, includePrivate bool) string {
	return fmt.Sprintf("vehicles_%t_%t", includeRemoved, includePrivate)
}

func permissionsKey(userID string) string {
	return "permissions:" + userID
}

// Vehicles caches List results per (includeRemoved, includePrivate) pair.
// Deleting a vehicle also drops the rental cache, since the rentals of a
// deleted vehicle lose their vehicle reference.
type Vehicles struct {
	repository.VehicleRepository
	cache   *cache.TTL[[]domain.Vehicle]
	rentals *Rentals
}

func NewVehicles(inner repository.VehicleRepository, ttl time.Duration, rentals *Rentals) *Vehicles {
	return &Vehicles{VehicleRepository: inner, cache: cache.NewTTL[[]domain.Vehicle](ttl), rentals: rentals}
}

func (v *Vehicles) List(ctx context.Context, includeRemoved, includePrivate bool) ([]domain.Vehicle, error) {
	key := vehiclesKey(includeRemoved, includePrivate)
	if cached, ok := v.cache.Get(key); ok {
		logger.CacheHit("vehicles", key)
		return slices.Clone(cached), nil
	}
	logger.CacheMiss("vehicles", key)

	vehicles, err := v.VehicleRepository.List(ctx, includeRemoved, includePrivate)
	if err != nil {
		return nil, err
	}
	v.cache.Set(key, vehicles)
	return slices.Clone(vehicles), nil
}

func (v *Vehicles) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	if err := v.VehicleRepository.Create(ctx, vehicle); err != nil {
		return err
	}
	v.Invalidate()
	return nil
}

func (v *Vehicles) Update(ctx context.Context, vehicle *domain.Vehicle) error {
	if err := v.VehicleRepository.Update(ctx, vehicle); err != nil {
		return err
	}
	v.Invalidate()
	return nil
}

func (v *Vehicles) Delete(ctx context.Context, id string) error {
	if err := v.VehicleRepository.Delete(ctx, id); err != nil {
		return err
	}
	v.Invalidate()
	v.rentals.Invalidate()
	return nil
}

func (v *Vehicles) Invalidate() {
	v.cache.Clear()
	logger.CacheInvalidated("vehicles", "all")
}

// Rentals caches the full rental list.
type Rentals struct {
	repository.RentalRepository
	cache *cache.TTL[[]domain.Rental]
}

func NewRentals(inner repository.RentalRepository, ttl time.Duration) *Rentals {
	return &Rentals{RentalRepository: inner, cache: cache.NewTTL[[]domain.Rental](ttl)}
}

func (r *Rentals) List(ctx context.Context) ([]domain.Rental, error) {
	if cached, ok := r.cache.Get(rentalsKey); ok {
		logger.CacheHit("rentals", rentalsKey)
		return slices.Clone(cached), nil
	}
	logger.CacheMiss("rentals", rentalsKey)

	rentals, err := r.RentalRepository.List(ctx)
	if err != nil {
		return nil, err
	}
	r.cache.Set(rentalsKey, rentals)
	return slices.Clone(rentals), nil
}

func (r *Rentals) Create(ctx context.Context, rental *domain.Rental) error {
	return r.after(r.RentalRepository.Create(ctx, rental))
}

func (r *Rentals) Update(ctx context.Context, rental *domain.Rental) error {
	return r.after(r.RentalRepository.Update(ctx, rental))
}

func (r *Rentals) Delete(ctx context.Context, id string) error {
	return r.after(r.RentalRepository.Delete(ctx, id))
}

func (r *Rentals) CreateStaged(ctx context.Context, rental *domain.Rental) error {
	return r.after(r.RentalRepository.CreateStaged(ctx, rental))
}

func (r *Rentals) Decide(ctx context.Context, id string, approval domain.ApprovalStatus, status domain.RentalStatus, decidedBy, reason string) error {
	return r.after(r.RentalRepository.Decide(ctx, id, approval, status, decidedBy, reason))
}

func (r *Rentals) after(err error) error {
	if err != nil {
		return err
	}
	r.Invalidate()
	return nil
}

func (r *Rentals) Invalidate() {
	r.cache.Clear()
	logger.CacheInvalidated("rentals", "all")
}

// Customers caches the full customer list.
type Customers struct {
	repository.CustomerRepository
	cache *cache.TTL[[]domain.Customer]
}

func NewCustomers(inner repository.CustomerRepository, ttl time.Duration) *Customers {
	return &Customers{CustomerRepository: inner, cache: cache.NewTTL[[]domain.Customer](ttl)}
}

func (c *Customers) List(ctx context.Context) ([]domain.Customer, error) {
	if cached, ok := c.cache.Get(customersKey); ok {
		logger.CacheHit("customers", customersKey)
		return slices.Clone(cached), nil
	}
	logger.CacheMiss("customers", customersKey)

	customers, err := c.CustomerRepository.List(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.Set(customersKey, customers)
	return slices.Clone(customers), nil
}

func (c *Customers) Create(ctx context.Context, customer *domain.Customer) error {
	return c.after(c.CustomerRepository.Create(ctx, customer))
}

func (c *Customers) Update(ctx context.Context, customer *domain.Customer) error {
	return c.after(c.CustomerRepository.Update(ctx, customer))
}

func (c *Customers) Delete(ctx context.Context, id string) error {
	return c.after(c.CustomerRepository.Delete(ctx, id))
}

func (c *Customers) after(err error) error {
	if err != nil {
		return err
	}
	c.Invalidate()
	return nil
}

func (c *Customers) Invalidate() {
	c.cache.Clear()
	logger.CacheInvalidated("customers", "all")
}

// Users caches company permissions per user. Only the affected user's entry
// is dropped on change.
type Users struct {
	repository.UserRepository
	cache *cache.TTL[[]domain.UserPermission]
}

func NewUsers(inner repository.UserRepository, ttl time.Duration) *Users {
	return &Users{UserRepository: inner, cache: cache.NewTTL[[]domain.UserPermission](ttl)}
}

func (u *Users) GetPermissions(ctx context.Context, userID string) ([]domain.UserPermission, error) {
	key := permissionsKey(userID)
	if cached, ok := u.cache.Get(key); ok {
		logger.CacheHit("permissions", key)
		return slices.Clone(cached), nil
	}
	logger.CacheMiss("permissions", key)

	perms, err := u.UserRepository.GetPermissions(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.cache.Set(key, perms)
	return slices.Clone(perms), nil
}

func (u *Users) SetPermission(ctx context.Context, userID, companyID string, perms domain.CompanyPermissions) error {
	if err := u.UserRepository.SetPermission(ctx, userID, companyID, perms); err != nil {
		return err
	}
	u.InvalidateUser(userID)
	return nil
}

func (u *Users) RemovePermission(ctx context.Context, userID, companyID string) error {
	if err := u.UserRepository.RemovePermission(ctx, userID, companyID); err != nil {
		return err
	}
	u.InvalidateUser(userID)
	return nil
}

func (u *Users) Update(ctx context.Context, user *domain.User) error {
	if err := u.UserRepository.Update(ctx, user); err != nil {
		return err
	}
	u.InvalidateUser(user.ID)
	return nil
}

func (u *Users) Delete(ctx context.Context, id string) error {
	if err := u.UserRepository.Delete(ctx, id); err != nil {
		return err
	}
	u.InvalidateUser(id)
	return nil
}

func (u *Users) InvalidateUser(userID string) {
	u.cache.Delete(permissionsKey(userID))
	logger.CacheInvalidated("permissions", userID)
}

func (u *Users) Invalidate() {
	u.cache.Clear()
	logger.CacheInvalidated("permissions", "all")
}

// Protocols drops the rental cache after any protocol write, since creating a
// protocol sets a back-reference on its rental.
type Protocols struct {
	repository.ProtocolRepository
	rentals *Rentals
}

func NewProtocols(inner repository.ProtocolRepository, rentals *Rentals) *Protocols {
	return &Protocols{ProtocolRepository: inner, rentals: rentals}
}

func (p *Protocols) CreateHandover(ctx context.Context, protocol *domain.HandoverProtocol) error {
	return p.rentals.after(p.ProtocolRepository.CreateHandover(ctx, protocol))
}

func (p *Protocols) CreateReturn(ctx context.Context, protocol *domain.ReturnProtocol) error {
	return p.rentals.after(p.ProtocolRepository.CreateReturn(ctx, protocol))
}

func (p *Protocols) DeleteAll(ctx context.Context) (int64, error) {
	n, err := p.ProtocolRepository.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	p.rentals.Invalidate()
	return n, nil
}
