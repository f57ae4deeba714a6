// Package forecast projects balances forward from the current balance and the
// scheduled recurring rules, loan payments and goal contributions.
package forecast

import (
	"fmt"
	"sort"
	"time"

	"github.com/iho/fincore/internal/domain"
	"github.com/iho/fincore/internal/engine/recurring"
	"github.com/iho/fincore/internal/period"
)

// Input is everything a forecast is computed from.
type Input struct {
	Start          time.Time
	Period         domain.PeriodKind
	Rules          []domain.RecurringRule
	Pending        []domain.RecurringPosting
	Debts          []domain.LongTermDebt
	Contributions  []domain.Contribution
	InitialBalance int64
	HorizonMonths  int
}

// Generate projects balances over HorizonMonths from Start, bucketed by Period
// (monthly when unset). Each entry opens at the previous entry's closing
// balance. Recurring occurrences of every active rule are included; those not
// auto-posted or with an estimated amount are flagged as estimates. Arrears
// (unpaid loan entries, unswept rule occurrences and pending postings due
// before Start) fall on Start and so land in the first entry.
func Generate(in Input) (domain.CashFlowForecast, error) {
	if in.HorizonMonths <= 0 {
		return domain.CashFlowForecast{}, fmt.Errorf("%w: horizon must be at least one month", domain.ErrInvalidPeriodRange)
	}
	kind := in.Period
	if kind == "" {
		kind = domain.PeriodMonthly
	}
	if !kind.IsValid() {
		return domain.CashFlowForecast{}, fmt.Errorf("%w: %q", domain.ErrInvalidPeriodKind, kind)
	}

	start := period.Day(in.Start)
	end := period.AddMonths(start, in.HorizonMonths).AddDate(0, 0, -1)

	buckets, err := period.Buckets(start, end, kind)
	if err != nil {
		return domain.CashFlowForecast{}, err
	}

	events, err := collectEvents(in, start, end)
	if err != nil {
		return domain.CashFlowForecast{}, err
	}

	fc := domain.CashFlowForecast{
		Start:          start,
		End:            end,
		Period:         kind,
		HorizonMonths:  in.HorizonMonths,
		InitialBalance: in.InitialBalance,
		Entries:        make([]domain.ForecastEntry, 0, len(buckets)),
	}

	running := in.InitialBalance
	next := 0
	for i, b := range buckets {
		entry := domain.ForecastEntry{
			Start:          b.Start,
			End:            b.End,
			Label:          b.Label,
			OpeningBalance: running,
		}

		for next < len(events) && !events[next].Date.After(b.End) {
			ev := events[next]
			next++

			entry.Events = append(entry.Events, ev)
			if ev.Amount >= 0 {
				entry.ProjectedIncome += ev.Amount
			} else {
				entry.ProjectedExpenses -= ev.Amount
			}
			if ev.IsEstimated {
				entry.HasEstimates = true
			}

			running += ev.Amount
			if running < 0 && fc.FirstNegativeDate == nil {
				d := ev.Date
				fc.FirstNegativeDate = &d
			}
		}

		entry.NetCashFlow = entry.ProjectedIncome - entry.ProjectedExpenses
		entry.ClosingBalance = entry.OpeningBalance + entry.NetCashFlow

		if i == 0 || entry.ClosingBalance < fc.LowestBalance {
			fc.LowestBalance = entry.ClosingBalance
			fc.LowestBalanceDate = entry.End
		}
		fc.Entries = append(fc.Entries, entry)
	}

	fc.FinalBalance = running
	return fc, nil
}

func collectEvents(in Input, start, end time.Time) ([]domain.ForecastEvent, error) {
	var events []domain.ForecastEvent
	rules := make(map[string]*domain.RecurringRule, len(in.Rules))

	for i := range in.Rules {
		r := &in.Rules[i]
		rules[r.ID] = r
		if !r.Active {
			continue
		}
		from := start
		if due := period.Day(r.NextDueDate); due.Before(from) {
			from = due
		}
		dates, err := recurring.Occurrences(*r, from, end)
		if err != nil {
			return nil, err
		}
		for _, d := range dates {
			events = append(events, domain.ForecastEvent{
				Date:        notBefore(d, start),
				Source:      domain.SourceRecurring,
				ReferenceID: r.ID,
				Description: r.Description,
				Amount:      r.Direction.Sign() * r.Amount,
				IsEstimated: !r.AutoPost || r.EstimatedAmount,
			})
		}
	}

	for _, p := range in.Pending {
		r, ok := rules[p.RuleID]
		if !ok || p.Status != domain.PostingStatusPending {
			continue
		}
		due := notBefore(period.Day(p.DueDate), start)
		if due.After(end) {
			continue
		}
		events = append(events, domain.ForecastEvent{
			Date:        due,
			Source:      domain.SourceRecurring,
			ReferenceID: r.ID + "#" + p.PeriodLabel,
			Description: r.Description,
			Amount:      r.Direction.Sign() * p.Amount,
			IsEstimated: true,
		})
	}

	for _, debt := range in.Debts {
		if !debt.Active {
			continue
		}
		for _, e := range debt.Schedule {
			due := notBefore(period.Day(e.DueDate), start)
			if due.After(end) {
				continue
			}
			owed := e.Outstanding()
			if owed <= 0 {
				continue
			}
			events = append(events, domain.ForecastEvent{
				Date:        due,
				Source:      domain.SourceDebt,
				ReferenceID: fmt.Sprintf("%s#%d", debt.ID, e.Period),
				Description: debt.Name,
				Amount:      -owed,
			})
		}
	}

	for _, c := range in.Contributions {
		d := period.Day(c.Date)
		if d.Before(start) || d.After(end) {
			continue
		}
		events = append(events, domain.ForecastEvent{
			Date:        d,
			Source:      domain.SourceContribution,
			ReferenceID: c.GoalID,
			Amount:      -c.Amount,
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.Before(events[j].Date)
		}
		// Same-day inflows land before outflows.
		if events[i].Amount != events[j].Amount {
			return events[i].Amount > events[j].Amount
		}
		return events[i].ReferenceID < events[j].ReferenceID
	})
	return events, nil
}

func notBefore(d, start time.Time) time.Time {
	if d.Before(start) {
		return start
	}
	return d
}
