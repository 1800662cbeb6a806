package reportfilter

// RowHook runs once a report's rows are materialised. It receives the stable
// row keys in display order and returns the keys that should be hidden.
type RowHook func(keys []string) []string

// HideRows returns a hook hiding every row whose key is listed.
func HideRows(keys ...string) RowHook {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return func(rowKeys []string) []string {
		var hidden []string
		for _, k := range rowKeys {
			if _, ok := set[k]; ok {
				hidden = append(hidden, k)
			}
		}
		return hidden
	}
}

// OnRowsRendered attaches a post-render hook to the report.
func (r *Registry) OnRowsRendered(name string, hook RowHook) {
	if hook == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks[name] = append(r.hooks[name], hook)
}

// RunRowHooks executes the report's hooks and returns the union of hidden keys.
func (r *Registry) RunRowHooks(name string, keys []string) map[string]struct{} {
	r.mu.RLock()
	hooks := append([]RowHook(nil), r.hooks[name]...)
	r.mu.RUnlock()

	hidden := make(map[string]struct{})
	for _, hook := range hooks {
		for _, k := range hook(keys) {
			hidden[k] = struct{}{}
		}
	}
	return hidden
}
