package domain

type SideEnum int

const (
	Buy SideEnum = iota
	Sell
)

func (e SideEnum) String() string {
	return []string{"Buy", "Sell"}[e]
}

type WatchModeEnum int

const (
	Scheduled WatchModeEnum = iota
	Stream
)

func (e WatchModeEnum) String() string {
	return []string{"Scheduled", "Stream"}[e]
}
