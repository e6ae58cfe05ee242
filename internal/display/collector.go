package display

import "consolidated-orderbook/internal/domain"

// RowCollector buffers one redisplay pass for request/response consumers.
type RowCollector struct {
	RowCount int
	Rows     []domain.DisplayRow
}

func (c *RowCollector) ResetWithCount(n int) {
	c.RowCount = n
	c.Rows = c.Rows[:0]
}

func (c *RowCollector) UpdateRow(row domain.DisplayRow) {
	c.Rows = append(c.Rows, row)
}

// multiRenderer fans one pass out to every attached renderer.
type multiRenderer []domain.RowRenderer

func (m multiRenderer) ResetWithCount(n int) {
	for _, r := range m {
		r.ResetWithCount(n)
	}
}

func (m multiRenderer) UpdateRow(row domain.DisplayRow) {
	for _, r := range m {
		r.UpdateRow(row)
	}
}
