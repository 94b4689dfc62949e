package utils

import "time"

// StartOfDay возвращает полночь календарного дня t в его же часовом поясе.
// Truncate здесь не подходит: он режет по UTC и сдвигает границу суток
// на величину смещения пояса.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
