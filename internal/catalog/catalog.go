package catalog

import (
	"fmt"
	"strings"

	"github.com/schollz/closestmatch"
	"github.com/tahcohcat/ramadan-tracker/internal/models"
)

const DefaultImage = "images/rcm.png"

// images maps the logical keys used by catalog entries to bundled assets
var images = map[string]string{
	"@/assets/images/rcm.png":      "images/rcm.png",
	"@/assets/images/quran.png":    "images/quran.png",
	"@/assets/images/sadaqah.png":  "images/sadaqah.png",
	"@/assets/images/taraweeh.png": "images/taraweeh.png",
}

var defaultActivities = []models.Activity{
	{ID: "sadaqah", Title: "Sadaqah", Subtitle: "Charity", PointValue: 100, ImagePath: "@/assets/images/sadaqah.png"},
	{ID: "quran-memorization", Title: "Quran Memorization", Subtitle: "Memorizing The Quran", PointValue: 300, ImagePath: "@/assets/images/quran.png"},
	{ID: "reading-quran", Title: "Reading Quran", Subtitle: "Reading The Quran", PointValue: 200, ImagePath: "@/assets/images/quran.png"},
	{ID: "rcm-service", Title: "RCM Service/Volunteer", Subtitle: "Input What You Did", PointValue: 200, ImagePath: "@/assets/images/rcm.png"},
	{ID: "taraweeh", Title: "Attending Taraweh", Subtitle: "Praying Taraweh", PointValue: 100, ImagePath: "@/assets/images/taraweeh.png"},
	{ID: "cooking-iftar", Title: "Cooking Iftar For Your Family", Subtitle: "Preparing Iftar", PointValue: 100, ImagePath: "@/assets/images/rcm.png"},
	{ID: "dhikr", Title: "Dhikr", Subtitle: "Remembrance Of Allah", PointValue: 150, ImagePath: "@/assets/images/rcm.png"},
	{ID: "breaking-fast", Title: "Breaking Your Fast With Dates And Water", Subtitle: "Breaking Fast", PointValue: 150, ImagePath: "@/assets/images/rcm.png"},
	{ID: "fasting-intention", Title: "Intention For Fasting", Subtitle: "Setting The Intention", PointValue: 150, ImagePath: "@/assets/images/rcm.png"},
	{ID: "dua-before-iftar", Title: "Making Dua Before Iftar", Subtitle: "Praying Before Iftar", PointValue: 150, ImagePath: "@/assets/images/rcm.png"},
}

// Entry is an activity with its image resolved to a bundled asset.
type Entry struct {
	models.Activity
	Image string `json:"image"`
}

type Catalog struct {
	entries []Entry
	byID    map[string]int
	byTitle map[string]int
	matcher *closestmatch.ClosestMatch
}

// Default returns the built-in Ramadan catalog.
func Default() *Catalog {
	c, err := New(defaultActivities)
	if err != nil {
		panic("invalid built-in catalog: " + err.Error())
	}
	return c
}

// New builds a catalog, rejecting duplicate IDs and non-positive point values.
func New(activities []models.Activity) (*Catalog, error) {
	c := &Catalog{
		entries: make([]Entry, 0, len(activities)),
		byID:    make(map[string]int, len(activities)),
		byTitle: make(map[string]int, len(activities)),
	}

	titles := make([]string, 0, len(activities))
	for _, a := range activities {
		if a.ID == "" {
			return nil, fmt.Errorf("activity %q has no id", a.Title)
		}
		if a.PointValue <= 0 {
			return nil, fmt.Errorf("activity %s has non-positive point value %d", a.ID, a.PointValue)
		}
		if _, dup := c.byID[a.ID]; dup {
			return nil, fmt.Errorf("duplicate activity id %s", a.ID)
		}

		c.byID[a.ID] = len(c.entries)
		c.byTitle[strings.ToLower(a.Title)] = len(c.entries)
		c.entries = append(c.entries, Entry{Activity: a, Image: ImageFor(a.ImagePath)})
		titles = append(titles, strings.ToLower(a.Title))
	}

	c.matcher = closestmatch.New(titles, []int{2, 3})
	return c, nil
}

func (c *Catalog) All() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Catalog) Get(id string) (Entry, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Find resolves a free-text title to the closest catalog entry.
func (c *Catalog) Find(query string) (Entry, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return Entry{}, false
	}

	if i, ok := c.byTitle[q]; ok {
		return c.entries[i], true
	}

	best := c.matcher.Closest(q)
	i, ok := c.byTitle[best]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// ImageFor resolves a logical image key, falling back to DefaultImage.
func ImageFor(key string) string {
	if path, ok := images[key]; ok {
		return path
	}
	return DefaultImage
}
