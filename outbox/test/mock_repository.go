package test

import (
	"context"
	"errors"
	"sync"

	"mailflock/newsletter-outbox/outbox"
)

type MockClaim struct {
	sync.Mutex
	task        outbox.DeliveryTask
	issue       outbox.NewsletterIssue
	completed   bool
	released    bool
	completeErr error
}

func NewMockClaim(task outbox.DeliveryTask, issue outbox.NewsletterIssue) *MockClaim {
	return &MockClaim{
		task:  task,
		issue: issue,
	}
}

func (c *MockClaim) Task() outbox.DeliveryTask {
	return c.task
}

func (c *MockClaim) Issue() outbox.NewsletterIssue {
	return c.issue
}

func (c *MockClaim) Complete(ctx context.Context) error {
	c.Lock()
	defer c.Unlock()
	if c.completeErr != nil {
		return c.completeErr
	}
	c.completed = true
	return nil
}

func (c *MockClaim) Release() error {
	c.Lock()
	defer c.Unlock()
	c.released = true
	return nil
}

func (c *MockClaim) WasCompleted() bool {
	c.Lock()
	defer c.Unlock()
	return c.completed
}

func (c *MockClaim) WasReleased() bool {
	c.Lock()
	defer c.Unlock()
	return c.released
}

func (c *MockClaim) ReturnCompleteError(err error) {
	c.Lock()
	defer c.Unlock()
	c.completeErr = err
}

type MockRepository struct {
	sync.Mutex
	claimsToReturn []*MockClaim
	claimCallCount int
	returnError    bool
	mockQueueSize  uint
	mockTotalSize  uint
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		claimsToReturn: []*MockClaim{},
	}
}

func (mr *MockRepository) ClaimTask(ctx context.Context) (outbox.Claim, error) {
	mr.Lock()
	defer mr.Unlock()
	mr.claimCallCount++

	if mr.returnError {
		return nil, errors.New("oops")
	}

	if len(mr.claimsToReturn) == 0 {
		return nil, outbox.ErrEmptyQueue
	}

	var c *MockClaim
	c, mr.claimsToReturn = mr.claimsToReturn[0], mr.claimsToReturn[1:]

	return c, nil
}

func (mr *MockRepository) AddClaim(c *MockClaim) {
	mr.Lock()
	defer mr.Unlock()
	mr.claimsToReturn = append(mr.claimsToReturn, c)
}

func (mr *MockRepository) GetClaimCallCount() int {
	mr.Lock()
	defer mr.Unlock()
	return mr.claimCallCount
}

func (mr *MockRepository) ReturnErrors() {
	mr.returnError = true
}

func (mr *MockRepository) GetQueueSize() (uint, error) {
	if mr.returnError {
		return 0, errors.New("oops")
	}

	return mr.mockQueueSize, nil
}

func (mr *MockRepository) GetTotalSize() (uint, error) {
	if mr.returnError {
		return 0, errors.New("oops")
	}

	return mr.mockTotalSize, nil
}

func (mr *MockRepository) SetQueueSize(size uint) {
	mr.mockQueueSize = size
}

func (mr *MockRepository) SetTotalSize(size uint) {
	mr.mockTotalSize = size
}
