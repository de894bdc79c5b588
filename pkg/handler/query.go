package handler

import "github.com/cuemby/tracker-deployer/pkg/store"

// Show is a pure read of the persisted record, legal against any
// state.
func (h *Handlers) Show(name string) (store.Record, error) {
	rec, err := h.Store.Load(name)
	if err != nil {
		return store.Record{}, err
	}
	return *rec, nil
}

// List enumerates every environment name with a record on disk.
func (h *Handlers) List() ([]string, error) {
	return h.Store.List()
}
