package usecase

import (
	"context"
	"fmt"
	"log"
)

// Transaction runs a sequence of operations with per-step compensations.
// Used where an external side effect (a gateway payment intent) has to be
// undone when a later local write fails. Compensations are aligned by index
// with operations and run in reverse for every step before the failed one.
type Transaction struct {
	operations    []Operation
	compensations []Compensation
}

type Operation struct {
	Name string
	Fn   func(context.Context) error
}

type Compensation struct {
	Name string
	Fn   func(context.Context) error
}

func NewTransaction() *Transaction {
	return &Transaction{
		operations:    []Operation{},
		compensations: []Compensation{},
	}
}

func (t *Transaction) AddOperation(name string, fn func(context.Context) error) {
	t.operations = append(t.operations, Operation{name, fn})
}

func (t *Transaction) AddCompensation(name string, fn func(context.Context) error) {
	t.compensations = append(t.compensations, Compensation{name, fn})
}

func (t *Transaction) Execute(ctx context.Context) error {
	for i, op := range t.operations {
		if err := op.Fn(ctx); err != nil {
			t.rollback(ctx, i)
			return fmt.Errorf("operation '%s' failed: %w", op.Name, err)
		}
	}
	return nil
}

func (t *Transaction) rollback(ctx context.Context, failedAtIndex int) {
	for i := failedAtIndex - 1; i >= 0; i-- {
		if i < len(t.compensations) {
			comp := t.compensations[i]
			if err := comp.Fn(ctx); err != nil {
				log.Printf("⚠️ compensation '%s' failed: %v (manual cleanup may be needed)", comp.Name, err)
			}
		}
	}
}
