package task

import "math"

const (
	scorePivot  = 21  // инверсия сложности и времени: быстрые задачи выше
	scoreWeight = 1.2 // вес квадратов impact и urgency
)

// Score считает приоритет задачи, чем больше тем важнее:
//
//	sqrt((21-difficulty)^2 + 1.2*impact^2 + (21-time)^2 + 1.2*urgency^2)
//
// диапазоны не проверяются, NaN проходит насквозь
func Score(difficulty, impact, time, urgency float64) float64 {
	d := scorePivot - difficulty
	t := scorePivot - time
	return math.Sqrt(d*d + impact*impact*scoreWeight + t*t + urgency*urgency*scoreWeight)
}
