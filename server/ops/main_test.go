package ops

import (
	"github.com/hrygo/shopchat/store"
	"github.com/hrygo/shopchat/store/storetest"
)

func newTestStore() (*store.Store, *storetest.Customers, *storetest.Products, *storetest.Sales) {
	return storetest.Seeded()
}
