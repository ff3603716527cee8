package watch

// MarkHandlerInstalled makes Attach skip the process-wide signal handler
// registration. This is exported for testing purposes only.
func (c *Coordinator) MarkHandlerInstalled() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.installed = true
}
