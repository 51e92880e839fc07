package notehubtest

import (
	"fmt"
	"time"

	"github.com/example/notehub/internal/core/note"
)

var sampleTitles = []string{
	"Weekly planning",
	"Grocery run",
	"Book recommendations",
	"Sprint retro",
	"Dentist appointment",
	"Gift ideas",
	"Quarterly goals",
	"Hardware store list",
}

// Samples returns n notes cycling through every tag, spaced a minute apart
// so list order is stable.
func Samples(n int, start time.Time) []Note {
	notes := make([]Note, 0, n)
	for i := 0; i < n; i++ {
		title := sampleTitles[i%len(sampleTitles)]
		if i >= len(sampleTitles) {
			title = fmt.Sprintf("%s #%d", title, i/len(sampleTitles)+1)
		}
		created := start.Add(time.Duration(i) * time.Minute)
		notes = append(notes, Note{
			Title:     title,
			Content:   fmt.Sprintf("Sample note %d", i+1),
			Tag:       string(note.Tags[i%len(note.Tags)]),
			CreatedAt: created,
			UpdatedAt: created,
		})
	}
	return notes
}
