package cpu

// Step executes exactly one instruction (or, if halted/stopped with no
// pending interrupt, one idle M-cycle) and returns the number of
// M-cycles it spent. Interrupt dispatch, when one is taken, counts as
// its own five-M-cycle step distinct from instruction execution.
func (c *CPU) Step() int {
	if c.dispatchInterrupt() {
		return 5
	}

	if c.Halted || c.Stopped {
		c.tick()
		return 1
	}

	if c.irq.EIPendingFlag() {
		c.irq.SetEIPending(false)
		c.irq.SetIME(true)
	}

	opcode := c.fetch()
	return c.execute(opcode)
}

// dispatchInterrupt services the highest-priority pending interrupt if
// IME is set, even while halted. Returns true if one was serviced.
func (c *CPU) dispatchInterrupt() bool {
	if (c.Halted || c.Stopped) && c.irq.Pending() {
		c.Halted = false
		c.Stopped = false
	}
	if !c.irq.IMEEnabled() || !c.irq.Pending() {
		return false
	}

	vector, flag := c.irq.NextVector()
	c.irq.SetIME(false)
	c.irq.Clear(flag)

	c.tick()
	c.tick()
	c.push(c.PC)
	c.PC = vector
	c.tick()
	return true
}
