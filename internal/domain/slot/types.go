package slot

type Status string

const (
	StatusFree   Status = "free"
	StatusBooked Status = "booked"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusFree, StatusBooked:
		return true
	default:
		return false
	}
}
