package tasks_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/okian/fieldforce/internal/domain/model"
	"github.com/okian/fieldforce/internal/domain/tasks"
	. "github.com/smartystreets/goconvey/convey"
)

var now = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func task(id string, status model.TaskStatus, due time.Time) model.Task {
	return model.Task{ID: id, UserID: "1", Status: status, Priority: model.PriorityMedium, DueDate: due}
}

func ids(ts []model.Task) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.ID
	}
	return out
}

func TestFilter(t *testing.T) {
	Convey("Given pending tasks around the current day", t, func() {
		list := []model.Task{
			task("late-tonight", model.TaskPending, time.Date(2024, 3, 15, 23, 59, 0, 0, time.UTC)),
			task("tomorrow", model.TaskPending, time.Date(2024, 3, 16, 0, 1, 0, 0, time.UTC)),
			task("yesterday", model.TaskPending, time.Date(2024, 3, 14, 23, 59, 0, 0, time.UTC)),
			task("next-week", model.TaskPending, time.Date(2024, 3, 22, 10, 0, 0, 0, time.UTC)),
			task("too-far", model.TaskPending, time.Date(2024, 3, 22, 10, 0, 1, 0, time.UTC)),
			task("done-today", model.TaskCompleted, time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)),
		}

		Convey("When the today window is applied", func() {
			got, err := tasks.Filter(list, model.TaskPending, tasks.WindowToday, now)

			Convey("Then only tasks due today are kept", func() {
				So(err, ShouldBeNil)
				So(ids(got), ShouldResemble, []string{"late-tonight"})
			})
		})

		Convey("When the week window is applied", func() {
			got, err := tasks.Filter(list, model.TaskPending, tasks.WindowWeek, now)

			Convey("Then tasks up to now plus seven days are kept", func() {
				So(err, ShouldBeNil)
				So(ids(got), ShouldResemble, []string{"late-tonight", "tomorrow", "next-week"})
			})
		})

		Convey("When the overdue window is applied", func() {
			got, err := tasks.Filter(list, model.TaskPending, tasks.WindowOverdue, now)

			Convey("Then only tasks due before today are kept", func() {
				So(err, ShouldBeNil)
				So(ids(got), ShouldResemble, []string{"yesterday"})
			})
		})

		Convey("When no window is applied", func() {
			got, err := tasks.Filter(list, model.TaskPending, tasks.WindowAll, now)

			Convey("Then only the status filter is used", func() {
				So(err, ShouldBeNil)
				So(got, ShouldHaveLength, 5)
			})
		})

		Convey("When filtering by another status", func() {
			got, _ := tasks.Filter(list, model.TaskCompleted, tasks.WindowToday, now)

			Convey("Then status equality is exact", func() {
				So(ids(got), ShouldResemble, []string{"done-today"})
			})
		})

		Convey("When no status is given", func() {
			got, err := tasks.Filter(list, "", tasks.WindowToday, now)

			Convey("Then every status due today is kept", func() {
				So(err, ShouldBeNil)
				So(ids(got), ShouldResemble, []string{"late-tonight", "done-today"})
			})
		})
	})

	Convey("Given a large input due on the same date", t, func() {
		due := time.Date(2024, 3, 21, 18, 0, 0, 0, time.UTC)
		one := []model.Task{task("t0", model.TaskPending, due)}
		many := make([]model.Task, 10_000)
		for i := range many {
			many[i] = task(fmt.Sprintf("t%d", i), model.TaskPending, due)
		}

		Convey("When the week window is applied to both", func() {
			small, err1 := tasks.Filter(one, model.TaskPending, tasks.WindowWeek, now)
			large, err2 := tasks.Filter(many, model.TaskPending, tasks.WindowWeek, now)

			Convey("Then every element gets the same decision", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(small, ShouldHaveLength, 1)
				So(large, ShouldHaveLength, 10_000)
			})
		})
	})

	Convey("Given a task without a due date", t, func() {
		list := []model.Task{task("undated", model.TaskPending, time.Time{})}

		Convey("When a date window is applied", func() {
			_, err := tasks.Filter(list, model.TaskPending, tasks.WindowToday, now)

			Convey("Then ErrInvalidTimestamp is surfaced", func() {
				So(errors.Is(err, tasks.ErrInvalidTimestamp), ShouldBeTrue)
			})
		})

		Convey("When no window is applied", func() {
			got, err := tasks.Filter(list, model.TaskPending, tasks.WindowAll, now)

			Convey("Then the task is kept", func() {
				So(err, ShouldBeNil)
				So(got, ShouldHaveLength, 1)
			})
		})
	})
}

func TestNewBounds(t *testing.T) {
	Convey("Given an instant in a non-UTC zone", t, func() {
		ist := time.FixedZone("IST", 5*3600+1800)
		at := time.Date(2024, 3, 15, 0, 30, 0, 0, ist)

		Convey("When bounds are computed", func() {
			b := tasks.NewBounds(at)

			Convey("Then the day is taken in that zone", func() {
				So(b.TodayStart.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, ist)), ShouldBeTrue)
				So(b.TodayEnd.Equal(time.Date(2024, 3, 15, 23, 59, 59, 999999999, ist)), ShouldBeTrue)
				So(b.WeekEnd.Equal(at.AddDate(0, 0, 7)), ShouldBeTrue)
			})
		})
	})
}

func TestParse(t *testing.T) {
	Convey("Given query values", t, func() {
		w, err := tasks.ParseWindow("")
		So(err, ShouldBeNil)
		So(w, ShouldEqual, tasks.WindowAll)

		w, err = tasks.ParseWindow("Overdue")
		So(err, ShouldBeNil)
		So(w, ShouldEqual, tasks.WindowOverdue)

		_, err = tasks.ParseWindow("month")
		So(errors.Is(err, tasks.ErrUnknownWindow), ShouldBeTrue)

		s, err := tasks.ParseStatus("in-progress")
		So(err, ShouldBeNil)
		So(s, ShouldEqual, model.TaskInProgress)

		s, err = tasks.ParseStatus("")
		So(err, ShouldBeNil)
		So(s, ShouldEqual, model.TaskStatus(""))

		_, err = tasks.ParseStatus("blocked")
		So(errors.Is(err, tasks.ErrUnknownStatus), ShouldBeTrue)
	})
}

func TestBoard(t *testing.T) {
	Convey("Given tasks in every status", t, func() {
		due := now.Add(2 * time.Hour)
		list := []model.Task{
			task("a", model.TaskPending, due),
			task("b", model.TaskInProgress, due),
			task("c", model.TaskCompleted, due),
			task("d", model.TaskPending, due.AddDate(0, 0, -3)),
		}

		Convey("When the today board is built", func() {
			board, err := tasks.NewBoard(list, tasks.WindowToday, now)

			Convey("Then each column holds its status", func() {
				So(err, ShouldBeNil)
				So(ids(board.Pending), ShouldResemble, []string{"a"})
				So(ids(board.InProgress), ShouldResemble, []string{"b"})
				So(ids(board.Completed), ShouldResemble, []string{"c"})
			})
		})
	})
}

func TestTransitions(t *testing.T) {
	Convey("Given the task lifecycle", t, func() {
		Convey("When moving forward", func() {
			So(tasks.ValidateTransition(model.TaskPending, model.TaskInProgress), ShouldBeNil)
			So(tasks.ValidateTransition(model.TaskInProgress, model.TaskCompleted), ShouldBeNil)
			So(tasks.ValidateTransition(model.TaskPending, model.TaskCompleted), ShouldBeNil)
			So(tasks.ValidateTransition(model.TaskCompleted, model.TaskCompleted), ShouldBeNil)
		})

		Convey("When moving backwards", func() {
			err := tasks.ValidateTransition(model.TaskCompleted, model.TaskPending)

			Convey("Then the transition is rejected", func() {
				So(errors.Is(err, tasks.ErrInvalidTransition), ShouldBeTrue)
			})
		})

		Convey("When the target status is unknown", func() {
			err := tasks.ValidateTransition(model.TaskPending, "archived")

			Convey("Then ErrUnknownStatus is returned", func() {
				So(errors.Is(err, tasks.ErrUnknownStatus), ShouldBeTrue)
			})
		})

		Convey("When a task is completed", func() {
			done, err := tasks.Apply(task("x", model.TaskInProgress, now), model.TaskCompleted, now)

			Convey("Then the completion time is stamped", func() {
				So(err, ShouldBeNil)
				So(done.Status, ShouldEqual, model.TaskCompleted)
				So(done.CompletedAt, ShouldNotBeNil)
				So(done.CompletedAt.Equal(now), ShouldBeTrue)
			})
		})
	})
}
