package testapi

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"
)

var (
	lakes   = []string{"Lake Fork", "Toledo Bend", "Sam Rayburn", "Lake Guntersville", "Kentucky Lake", "Lake Okeechobee", "Table Rock", "Lake St. Clair"}
	formats = []string{"Open", "Classic", "Invitational", "Shootout", "Championship"}
	trails  = []string{"Bass Nation", "Open Series", "Team Trail", "Pro Circuit"}
	firsts  = []string{"Ann", "Bo", "Cy", "Dee", "Eli", "Fay", "Gus", "Hal", "Ida", "Jo", "Kit", "Lou", "Max", "Ned", "Ona", "Pat"}
	lasts   = []string{"Reed", "Stone", "Banks", "Pike", "Marsh", "Brook", "Shaw", "Lake", "Rivers", "Wade"}
	states  = []string{"TX", "LA", "AL", "TN", "KY", "FL", "MO", "MI"}
)

// Angler is one competitor's catch at an event.
type Angler struct {
	Name  string
	State string
	URL   string
	Day1  []float64
	Day2  []float64
}

// Day returns the fish of day 1 or 2.
func (a Angler) Day(day int) []float64 {
	if day == 1 {
		return a.Day1
	}
	return a.Day2
}

// Total sums the fish of day, or of both days when day is 0.
func (a Angler) Total(day int) float64 {
	var fish []float64
	switch day {
	case 0:
		fish = append(slices.Clone(a.Day1), a.Day2...)
	default:
		fish = a.Day(day)
	}
	var sum float64
	for _, f := range fish {
		sum += f
	}
	return round2(sum)
}

// BigBass is the longest fish of day, or of both days when day is 0.
func (a Angler) BigBass(day int) float64 {
	fish := append(slices.Clone(a.Day1), a.Day2...)
	if day != 0 {
		fish = a.Day(day)
	}
	if len(fish) == 0 {
		return 0
	}
	return slices.Max(fish)
}

// LimitPercent is the share of the daily limit weighed in.
func (a Angler) LimitPercent(day int) float64 {
	days, caught := 2, len(a.Day1)+len(a.Day2)
	if day != 0 {
		days, caught = 1, len(a.Day(day))
	}
	return round2(float64(caught) / float64(days*maxFishPerDay) * 100)
}

// Event is one generated tournament.
type Event struct {
	ID      string
	Name    string
	Date    time.Time
	Trail   string
	Season  string
	Anglers []Angler
}

// Standings orders anglers by total length for day, longest first.
func (e Event) Standings(day int) []Angler {
	out := slices.Clone(e.Anglers)
	slices.SortStableFunc(out, func(a, b Angler) int {
		switch ta, tb := a.Total(day), b.Total(day); {
		case ta > tb:
			return -1
		case ta < tb:
			return 1
		default:
			return 0
		}
	})
	return out
}

// Winner is the angler leading the total standings.
func (e Event) Winner() string {
	if len(e.Anglers) == 0 {
		return ""
	}
	return e.Standings(0)[0].Name
}

// Dataset holds generated events, newest first.
type Dataset struct {
	Events []Event
}

// Event looks up an event by id.
func (d *Dataset) Event(id string) (Event, bool) {
	for _, e := range d.Events {
		if e.ID == id {
			return e, true
		}
	}
	return Event{}, false
}

// Generate builds a dataset from cfg.
func Generate(cfg Config) *Dataset {
	cfg = cfg.withDefaults()
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	// Saturday events, a week apart, counting back from a fixed date.
	newest := time.Date(2024, time.June, 8, 0, 0, 0, 0, time.UTC)
	events := make([]Event, cfg.Events)
	for i := range events {
		date := newest.AddDate(0, 0, -7*i)
		events[i] = Event{
			ID:      uuid.NewString(),
			Name:    fmt.Sprintf("%s %s", lakes[i%len(lakes)], formats[rng.IntN(len(formats))]),
			Date:    date,
			Trail:   trails[rng.IntN(len(trails))],
			Season:  fmt.Sprint(date.Year()),
			Anglers: generateAnglers(rng, cfg.Anglers),
		}
	}
	return &Dataset{Events: events}
}

func generateAnglers(rng *rand.Rand, n int) []Angler {
	out := make([]Angler, n)
	for i := range out {
		name := fmt.Sprintf("%s %s", firsts[rng.IntN(len(firsts))], lasts[rng.IntN(len(lasts))])
		out[i] = Angler{
			Name:  name,
			State: states[rng.IntN(len(states))],
			URL:   fmt.Sprintf("https://anglers.example/%d", i+1),
			Day1:  generateFish(rng),
			Day2:  generateFish(rng),
		}
	}
	return out
}

// generateFish draws 0-5 lengths between 12 and 24 inches.
func generateFish(rng *rand.Rand) []float64 {
	n := rng.IntN(maxFishPerDay + 1)
	fish := make([]float64, n)
	for i := range fish {
		fish[i] = round2(12 + rng.Float64()*12)
	}
	return fish
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
