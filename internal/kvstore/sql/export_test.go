package sql

import "database/sql"

// GetTxFromStore is a test helper to extract the transaction from a Store.
func GetTxFromStore(store *Store) *sql.Tx {
	return store.txn
}
