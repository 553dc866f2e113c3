// Package db wires the concrete store drivers from a profile.
package db

import (
	"github.com/pkg/errors"

	"github.com/hrygo/shopchat/internal/profile"
	"github.com/hrygo/shopchat/store"
	"github.com/hrygo/shopchat/store/db/postgres"
	"github.com/hrygo/shopchat/store/db/sqlite"
)

// NewDrivers opens all three backing stores described by the profile.
// On any failure the already-opened drivers are closed before returning.
func NewDrivers(profile *profile.Profile) (store.CustomerDriver, store.ProductDriver, store.SaleDriver, error) {
	customers, err := sqlite.NewDB(profile.CustomerDSN)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "failed to open customer store")
	}

	products, err := postgres.NewProductDB(profile.ProductDSN)
	if err != nil {
		_ = customers.Close()
		return nil, nil, nil, errors.Wrap(err, "failed to open product store")
	}

	sales, err := postgres.NewSalesDB(profile.SalesDSN)
	if err != nil {
		_ = customers.Close()
		_ = products.Close()
		return nil, nil, nil, errors.Wrap(err, "failed to open sales store")
	}

	return customers, products, sales, nil
}
