package models

// ChartTable is one table of a seating chart with its resolved guests.
type ChartTable struct {
	Table Table

	// Guests are the known guests listed at the table, in membership order.
	Guests []Guest

	// Seats is the total seat demand of Guests.
	Seats int
}

// Chart is a read model of an event's current seating.
type Chart struct {
	Event Event

	// Tables are ordered by name, then ID.
	Tables []ChartTable

	// Unassigned lists accepted and pending guests seated nowhere, ordered by ID.
	Unassigned []Guest
}

// TotalSeats returns the seats taken across all tables.
func (c *Chart) TotalSeats() int {
	total := 0
	for _, t := range c.Tables {
		total += t.Seats
	}
	return total
}

// TotalCapacity returns the venue capacity.
func (c *Chart) TotalCapacity() int {
	total := 0
	for _, t := range c.Tables {
		total += t.Table.Capacity
	}
	return total
}
