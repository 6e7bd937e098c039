package analytics

import "time"

// GreetingLayout is the timestamp layout accepted by GreetingAt.
const GreetingLayout = "2006-01-02 15:04:05"

// Greeting returns the salutation for the time of day of t.
func Greeting(t time.Time) string {
	switch h := t.Hour(); {
	case h < 6:
		return "Доброй ночи"
	case h < 12:
		return "Доброе утро"
	case h < 18:
		return "Добрый день"
	default:
		return "Добрый вечер"
	}
}

// GreetingAt parses s with GreetingLayout and greets accordingly. A
// malformed timestamp is logged and yields "".
func (e *Engine) GreetingAt(s string) string {
	t, err := time.Parse(GreetingLayout, s)
	if err != nil {
		e.log.Error().Err(err).Str("at", s).Msg("bad greeting timestamp")
		return ""
	}
	return Greeting(t)
}
