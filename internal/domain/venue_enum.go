package domain

type VenueEnum int

const (
	Luno VenueEnum = iota
	Hata
)

func (e VenueEnum) String() string {
	return []string{"LUNO", "HATA"}[e]
}
