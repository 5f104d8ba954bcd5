package view

// Cache memoizes the filtered+sorted view.
//
// It has two states: valid (Get returns the stored slice as is) and invalid
// (the next Get recomputes). Invalidate moves it to invalid. Callers must
// invalidate on every change to data, search, filters or sort; page changes
// never require it.
type Cache struct {
	rows   []Record
	valid  bool
	builds int
}

// Get returns the cached view, calling compute first if the cache is invalid.
// Repeated calls without Invalidate return the same backing array.
func (c *Cache) Get(compute func() []Record) []Record {
	if c.valid {
		return c.rows
	}
	rows := compute()
	if rows == nil {
		rows = []Record{}
	}
	c.rows = rows
	c.valid = true
	c.builds++
	return rows
}

// Invalidate drops the stored view.
func (c *Cache) Invalidate() {
	c.rows = nil
	c.valid = false
}

// Valid reports whether the next Get will be served from the cache.
func (c *Cache) Valid() bool { return c.valid }

// Builds returns how many times the view has been computed.
func (c *Cache) Builds() int { return c.builds }
