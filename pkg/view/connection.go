package view

// Connection is a wire between one output gate and one input gate. It is
// registered in both endpoints' connection lists.
type Connection struct {
	key   Key
	out   Key
	in    Key
	valid bool
}

// Key returns the connection's arena key.
func (c *Connection) Key() Key { return c.key }

// Out returns the key of the output endpoint.
func (c *Connection) Out() Key { return c.out }

// In returns the key of the input endpoint.
func (c *Connection) In() Key { return c.in }

// Valid returns the cached validity flag. It reflects the bit-widths as of the
// tie or the last [Scene.CheckValid], not necessarily the current ones.
func (c *Connection) Valid() bool { return c.valid }

// other returns the endpoint opposite g.
func (c *Connection) other(g Key) Key {
	if c.out == g {
		return c.in
	}
	return c.out
}
