package transform

import (
	"time"

	"github.com/zpiroux/dsutils/entity"
)

// DayOfTheWeek adds the day of the week of a time column as an int column, with
// Monday as 0 and Sunday as 6.
type DayOfTheWeek struct {
	Col      string `json:"col"`
	FeatName string `json:"featName,omitempty"`
}

func (t DayOfTheWeek) OutputName() string {
	return featName(t.FeatName, t.Col+"_DayOfTheWeek")
}

func (t DayOfTheWeek) Fit(*entity.Frame, *entity.Column) (entity.Transformer, error) {
	return t, nil
}

func (t DayOfTheWeek) Transform(f *entity.Frame) (*entity.Frame, error) {
	c, err := columnOfKind(f, t.Col, entity.KindTime)
	if err != nil {
		return nil, err
	}
	days := make([]int64, c.Len())
	for i, ts := range c.Times {
		days[i] = int64((ts.Weekday() + 6) % 7)
	}
	return withColumn(f, entity.NewIntColumn(t.OutputName(), days).WithNulls(nullMask(c.Len(), c)))
}

// HourOfTheDay adds the hour (0-23) of a time column as an int column. The hour is taken in the
// location of each time value.
type HourOfTheDay struct {
	Col      string `json:"col"`
	FeatName string `json:"featName,omitempty"`
}

func (t HourOfTheDay) OutputName() string {
	return featName(t.FeatName, t.Col+"_HourOfTheDay")
}

func (t HourOfTheDay) Fit(*entity.Frame, *entity.Column) (entity.Transformer, error) {
	return t, nil
}

func (t HourOfTheDay) Transform(f *entity.Frame) (*entity.Frame, error) {
	c, err := columnOfKind(f, t.Col, entity.KindTime)
	if err != nil {
		return nil, err
	}
	hours := make([]int64, c.Len())
	for i, ts := range c.Times {
		hours[i] = int64(ts.Hour())
	}
	return withColumn(f, entity.NewIntColumn(t.OutputName(), hours).WithNulls(nullMask(c.Len(), c)))
}

// DaysFromLaterToEarly adds the number of whole days from Start to End as an int column.
// The result is negative when End is before Start and is floored, so a gap of -12 hours
// gives -1 and a gap of 36 hours gives 1.
type DaysFromLaterToEarly struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	FeatName string `json:"featName,omitempty"`
}

func (t DaysFromLaterToEarly) OutputName() string {
	return featName(t.FeatName, "DaysFrom_"+t.Start+"_To_"+t.End)
}

func (t DaysFromLaterToEarly) Fit(*entity.Frame, *entity.Column) (entity.Transformer, error) {
	return t, nil
}

func (t DaysFromLaterToEarly) Transform(f *entity.Frame) (*entity.Frame, error) {
	if err := f.HasColumns(t.Start, t.End); err != nil {
		return nil, err
	}
	start, err := columnOfKind(f, t.Start, entity.KindTime)
	if err != nil {
		return nil, err
	}
	end, err := columnOfKind(f, t.End, entity.KindTime)
	if err != nil {
		return nil, err
	}
	days := make([]int64, start.Len())
	for i := range days {
		days[i] = floorDays(end.Times[i].Sub(start.Times[i]))
	}
	return withColumn(f, entity.NewIntColumn(t.OutputName(), days).WithNulls(nullMask(start.Len(), start, end)))
}

func floorDays(d time.Duration) int64 {
	const day = 24 * time.Hour
	days := d / day
	if d%day != 0 && d < 0 {
		days--
	}
	return int64(days)
}
