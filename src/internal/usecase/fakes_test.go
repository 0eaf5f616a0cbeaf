package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"payment-service/src/internal/entity"
	"payment-service/src/internal/model"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
)

type undoKey struct{}

type undoLog struct {
	mu    sync.Mutex
	steps []func()
}

func (u *undoLog) add(step func()) {
	u.mu.Lock()
	u.steps = append(u.steps, step)
	u.mu.Unlock()
}

func recordUndo(ctx context.Context, step func()) {
	if log, ok := ctx.Value(undoKey{}).(*undoLog); ok {
		log.add(step)
	}
}

// fakeTransactor rolls back store writes made through ctx when fn fails.
// It takes no lock, so concurrent units of work interleave freely.
type fakeTransactor struct{}

func (fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(undoKey{}).(*undoLog); ok {
		return fn(ctx)
	}
	log := &undoLog{}
	if err := fn(context.WithValue(ctx, undoKey{}, log)); err != nil {
		for i := len(log.steps) - 1; i >= 0; i-- {
			log.steps[i]()
		}
		return err
	}
	return nil
}

// fakeWalletStore mirrors the conditional UPDATE: the check and the
// decrement happen under one lock.
type fakeWalletStore struct {
	mu      sync.Mutex
	wallets map[string]*entity.Wallet
	findErr error
}

func newFakeWalletStore() *fakeWalletStore {
	return &fakeWalletStore{wallets: map[string]*entity.Wallet{}}
}

func (s *fakeWalletStore) seed(id string, userID int64, balance int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets[id] = &entity.Wallet{ID: id, UserID: userID, Balance: decimal.NewFromInt(balance), Currency: "IDR"}
}

func (s *fakeWalletStore) balance(id string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wallets[id].Balance
}

func (s *fakeWalletStore) Create(ctx context.Context, wallet *entity.Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.wallets {
		if w.UserID == wallet.UserID {
			return entity.ErrWalletAlreadyExists
		}
	}
	cp := *wallet
	s.wallets[wallet.ID] = &cp
	return nil
}

func (s *fakeWalletStore) FindByID(ctx context.Context, id string) (*entity.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[id]
	if !ok {
		return nil, entity.ErrWalletNotFound
	}
	cp := *w
	return &cp, nil
}

func (s *fakeWalletStore) FindByUserID(ctx context.Context, userID int64) (*entity.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	for _, w := range s.wallets {
		if w.UserID == userID {
			cp := *w
			return &cp, nil
		}
	}
	return nil, entity.ErrWalletNotFound
}

func (s *fakeWalletStore) DecreaseBalance(ctx context.Context, id string, amount decimal.Decimal) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[id]
	if !ok || w.Balance.LessThan(amount) {
		return false, nil
	}
	w.Balance = w.Balance.Sub(amount)
	recordUndo(ctx, func() { s.adjust(id, amount) })
	return true, nil
}

func (s *fakeWalletStore) IncreaseBalance(ctx context.Context, id string, amount decimal.Decimal) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[id]
	if !ok {
		return false, nil
	}
	w.Balance = w.Balance.Add(amount)
	recordUndo(ctx, func() { s.adjust(id, amount.Neg()) })
	return true, nil
}

func (s *fakeWalletStore) adjust(id string, delta decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets[id].Balance = s.wallets[id].Balance.Add(delta)
}

type fakeTransactionStore struct {
	mu        sync.Mutex
	txs       map[string]*entity.Transaction
	createErr error
}

func newFakeTransactionStore() *fakeTransactionStore {
	return &fakeTransactionStore{txs: map[string]*entity.Transaction{}}
}

func (s *fakeTransactionStore) all() []entity.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Transaction, 0, len(s.txs))
	for _, tx := range s.txs {
		out = append(out, *tx)
	}
	return out
}

func (s *fakeTransactionStore) Create(ctx context.Context, tx *entity.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	for _, existing := range s.txs {
		if tx.OrderCode != nil && existing.OrderCode != nil && *tx.OrderCode == *existing.OrderCode {
			return entity.ErrDuplicateTransaction
		}
		if tx.OrderID != nil && existing.OrderID != nil && *tx.OrderID == *existing.OrderID && tx.Type == existing.Type {
			return entity.ErrDuplicateTransaction
		}
	}
	cp := *tx
	s.txs[tx.ID] = &cp
	recordUndo(ctx, func() {
		s.mu.Lock()
		delete(s.txs, tx.ID)
		s.mu.Unlock()
	})
	return nil
}

func (s *fakeTransactionStore) find(match func(tx *entity.Transaction) bool) (*entity.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range s.txs {
		if match(tx) {
			cp := *tx
			return &cp, nil
		}
	}
	return nil, entity.ErrTransactionNotFound
}

func (s *fakeTransactionStore) FindByID(ctx context.Context, id string) (*entity.Transaction, error) {
	return s.find(func(tx *entity.Transaction) bool { return tx.ID == id })
}

func (s *fakeTransactionStore) FindByOrderCode(ctx context.Context, orderCode int64) (*entity.Transaction, error) {
	return s.find(func(tx *entity.Transaction) bool { return tx.OrderCode != nil && *tx.OrderCode == orderCode })
}

func (s *fakeTransactionStore) FindByOrderID(ctx context.Context, orderID int64, txType entity.TransactionType) (*entity.Transaction, error) {
	return s.find(func(tx *entity.Transaction) bool {
		return tx.OrderID != nil && *tx.OrderID == orderID && tx.Type == txType
	})
}

func (s *fakeTransactionStore) ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]entity.Transaction, error) {
	var out []entity.Transaction
	for _, tx := range s.all() {
		if tx.WalletID == walletID {
			out = append(out, tx)
		}
	}
	if offset >= len(out) {
		return []entity.Transaction{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeTransactionStore) UpdateStatusFromPending(ctx context.Context, id string, status entity.TransactionStatus, externalRef *string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.txs[id]
	if !ok || tx.Status != entity.TransactionPending {
		return false, nil
	}
	prev := *tx
	tx.Status = status
	if externalRef != nil {
		tx.ExternalTransactionID = externalRef
	}
	recordUndo(ctx, func() {
		s.mu.Lock()
		*s.txs[id] = prev
		s.mu.Unlock()
	})
	return true, nil
}

type fakeOrderPaymentStore struct {
	mu      sync.Mutex
	records map[int64]*entity.OrderPayment
}

func newFakeOrderPaymentStore() *fakeOrderPaymentStore {
	return &fakeOrderPaymentStore{records: map[int64]*entity.OrderPayment{}}
}

func (s *fakeOrderPaymentStore) get(orderID int64) *entity.OrderPayment {
	s.mu.Lock()
	defer s.mu.Unlock()
	op, ok := s.records[orderID]
	if !ok {
		return nil
	}
	cp := *op
	return &cp
}

func (s *fakeOrderPaymentStore) put(op entity.OrderPayment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[op.OrderID] = &op
}

func (s *fakeOrderPaymentStore) Claim(ctx context.Context, op *entity.OrderPayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[op.OrderID]; ok {
		return entity.ErrOrderPaymentDuplicate
	}
	cp := *op
	s.records[op.OrderID] = &cp
	return nil
}

func (s *fakeOrderPaymentStore) FindByOrderID(ctx context.Context, orderID int64) (*entity.OrderPayment, error) {
	op := s.get(orderID)
	if op == nil {
		return nil, entity.ErrOrderPaymentNotFound
	}
	return op, nil
}

func (s *fakeOrderPaymentStore) Update(ctx context.Context, op *entity.OrderPayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.records[op.OrderID]
	if !ok || existing.Status.IsTerminal() {
		return entity.ErrOrderPaymentNotFound
	}
	published := existing.Published
	cp := *op
	cp.Published = published
	s.records[op.OrderID] = &cp
	return nil
}

func (s *fakeOrderPaymentStore) MarkPublished(ctx context.Context, orderID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if op, ok := s.records[orderID]; ok {
		op.Published = true
	}
	return nil
}

type fakeLocker struct {
	mu     sync.Mutex
	held   map[int64]string
	err    error
	serial int
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: map[int64]string{}}
}

func (l *fakeLocker) AcquireOrder(ctx context.Context, orderID int64, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return "", l.err
	}
	if _, ok := l.held[orderID]; ok {
		return "", nil
	}
	l.serial++
	token := time.Duration(l.serial).String()
	l.held[orderID] = token
	return token, nil
}

func (l *fakeLocker) ReleaseOrder(ctx context.Context, orderID int64, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[orderID] == token {
		delete(l.held, orderID)
	}
	return nil
}

type fakePublisher struct {
	mu        sync.Mutex
	succeeded []*model.PaymentSucceededEvent
	failed    []*model.PaymentFailedEvent
	created   []*model.OrderCreatedEvent
	failures  int
}

var errBrokerDown = errors.New("broker unavailable")

func (p *fakePublisher) fail() bool {
	if p.failures > 0 {
		p.failures--
		return true
	}
	return false
}

func (p *fakePublisher) SendPaymentSucceeded(event *model.PaymentSucceededEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail() {
		return errBrokerDown
	}
	p.succeeded = append(p.succeeded, event)
	return nil
}

func (p *fakePublisher) SendPaymentFailed(event *model.PaymentFailedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail() {
		return errBrokerDown
	}
	p.failed = append(p.failed, event)
	return nil
}

func (p *fakePublisher) SendOrderCreated(event *model.OrderCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail() {
		return errBrokerDown
	}
	p.created = append(p.created, event)
	return nil
}

func (p *fakePublisher) counts() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.succeeded), len(p.failed)
}

type fakeEnqueuer struct {
	mu    sync.Mutex
	tasks []*asynq.Task
	err   error
}

func (q *fakeEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return nil, q.err
	}
	q.tasks = append(q.tasks, task)
	return &asynq.TaskInfo{Type: task.Type()}, nil
}

type fakeOrderStore struct {
	mu     sync.Mutex
	orders map[int64]*entity.Order
	nextID int64
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: map[int64]*entity.Order{}}
}

func (s *fakeOrderStore) seed(id int64, status entity.PaymentStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[id] = &entity.Order{ID: id, UserID: 7, OrderCode: "ORD-TEST", TotalAmount: decimal.NewFromInt(300), PaymentStatus: status}
}

func (s *fakeOrderStore) get(id int64) *entity.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *s.orders[id]
	return &cp
}

func (s *fakeOrderStore) Create(ctx context.Context, order *entity.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	order.ID = s.nextID
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	cp := *order
	s.orders[order.ID] = &cp
	return nil
}

func (s *fakeOrderStore) FindByID(ctx context.Context, id int64) (*entity.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, entity.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *fakeOrderStore) UpdatePaymentStatusFromPending(ctx context.Context, id int64, status entity.PaymentStatus, transactionID, reason *string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.PaymentStatus != entity.PaymentPending {
		return false, nil
	}
	o.PaymentStatus = status
	o.TransactionID = transactionID
	o.FailureReason = reason
	return true, nil
}
