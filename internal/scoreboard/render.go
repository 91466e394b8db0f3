package scoreboard

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"standup-bot/internal/model"
)

const (
	// MarkPending and MarkDone are the two symbols a week slot can hold.
	MarkPending = "❓"
	MarkDone    = "✅"

	// WeekSlots is the number of expected check-ins per work week.
	WeekSlots = 5
)

// Marks is one member's week: five slots, true once checked in. A done slot
// never reverts within the week.
type Marks [WeekSlots]bool

func (m Marks) String() string {
	var b strings.Builder
	for _, done := range m {
		if done {
			b.WriteString(MarkDone)
		} else {
			b.WriteString(MarkPending)
		}
	}
	return b.String()
}

// FirstPending returns the index of the first unchecked slot, or -1 when the
// week is already complete.
func (m Marks) FirstPending() int {
	for i, done := range m {
		if !done {
			return i
		}
	}
	return -1
}

func (m Marks) DoneCount() int {
	n := 0
	for _, done := range m {
		if done {
			n++
		}
	}
	return n
}

// Render produces the full scoreboard text: one line per roster member, in
// roster order, names padded to the longest name so every mark sequence
// starts in the same column. Identical inputs yield identical text.
func Render(roster []model.TeamMember, marks map[int64]Marks, streaks map[int64]int) string {
	width := nameWidth(roster)
	var b strings.Builder
	for i, m := range roster {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(renderLine(m.Name, width, marks[m.DiscordID], streaks[m.DiscordID]))
	}
	return b.String()
}

func renderLine(name string, width int, m Marks, streak int) string {
	return fmt.Sprintf("%s %s (Streak: %d %s)", padRight(name, width), m, streak, dayWord(streak))
}

func nameWidth(roster []model.TeamMember) int {
	width := 0
	for _, m := range roster {
		if n := utf8.RuneCountInString(m.Name); n > width {
			width = n
		}
	}
	return width
}

func padRight(s string, width int) string {
	if pad := width - utf8.RuneCountInString(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}

func dayWord(n int) string {
	if n == 1 {
		return "day"
	}
	return "days"
}

// parseLine splits one scoreboard line back into its name field, mark
// sequence and streak count. The name is everything before the mark region
// with the alignment padding trimmed, so lookups compare whole name fields
// rather than bare substrings.
func parseLine(line string) (name string, marks Marks, streak int, err error) {
	idx := strings.IndexAny(line, MarkPending+MarkDone)
	if idx < 2 {
		return "", marks, 0, fmt.Errorf("%w: no mark sequence in %q", ErrCorruptPost, line)
	}
	name = strings.TrimRight(line[:idx], " ")
	if name == "" {
		return "", marks, 0, fmt.Errorf("%w: empty name in %q", ErrCorruptPost, line)
	}

	rest := line[idx:]
	for i := 0; i < WeekSlots; i++ {
		switch {
		case strings.HasPrefix(rest, MarkDone):
			marks[i] = true
			rest = rest[len(MarkDone):]
		case strings.HasPrefix(rest, MarkPending):
			rest = rest[len(MarkPending):]
		default:
			return "", marks, 0, fmt.Errorf("%w: short mark sequence in %q", ErrCorruptPost, line)
		}
	}

	if _, err := fmt.Sscanf(rest, " (Streak: %d", &streak); err != nil {
		return "", marks, 0, fmt.Errorf("%w: bad streak annotation in %q", ErrCorruptPost, line)
	}
	return name, marks, streak, nil
}

// lineWidth recovers the alignment width in effect for a rendered line: the
// rune count of the name field including its padding.
func lineWidth(line string) int {
	idx := strings.IndexAny(line, MarkPending+MarkDone)
	if idx < 1 {
		return 0
	}
	return utf8.RuneCountInString(line[:idx]) - 1
}

// parseContent extracts every member's marks from existing post content,
// keyed by display name. Lines that do not parse are reported so callers can
// decide between rebuilding and discarding.
func parseContent(content string) (map[string]Marks, error) {
	out := make(map[string]Marks)
	if content == "" {
		return out, nil
	}
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		name, marks, _, err := parseLine(line)
		if err != nil {
			return nil, err
		}
		out[name] = marks
	}
	return out, nil
}
