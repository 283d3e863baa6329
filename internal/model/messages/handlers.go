package messages

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"max.ks1230/expense-tracker/internal/entity/currency"
	"max.ks1230/expense-tracker/internal/entity/expense"
	"max.ks1230/expense-tracker/internal/entity/session"
	"max.ks1230/expense-tracker/internal/model/report"
)

const (
	dontUnderstandMessage = "I don't understand you :("
	helloMessage          = "Hello! I am your expense tracker 🧾\n" +
		"Log in with /login, then record expenses with /expense"
	loveToTalkMessage = "I would love to talk about it more!"

	loggedInMessage     = "Welcome, %s 👋"
	loggedOutMessage    = "Logged out. See you!"
	badCredsMessage     = "Invalid credentials."
	notLoggedInMessage  = "Please log in first: /login <user> <password>"
	incomeSetMessage    = "Monthly income set to %.2f"
	expenseAddedMessage = "Expense added and converted to %s %.2f"
	duplicateMessage    = "This expense already exists."
	noExpensesMessage   = "You have no expenses yet"

	incorrectUsageMessage    = "That is an incorrect command usage"
	incorrectExpenseMessage  = "Your expense amount is incorrect"
	incorrectIncomeMessage   = "Your income must be a positive number"
	incorrectDateMessage     = "The date is incorrect. Should be dd.mm.yyyy"
	incorrectMonthMessage    = "The month is incorrect. Should be yyyy-mm"
	unknownCategoryMessage   = "I don't know that category. Try one of: %s"
	unknownCurrencyMessage   = "I don't know that currency. Try one of: %s"
	unknownRecordMessage     = "There is no expense #%d"
	confirmDeleteMessage     = "About to delete #%d: %s\nSend /delete %d confirm to proceed"
	deletedMessage           = "Deleted #%d"
	updatedMessage           = "Updated #%d"
	incomeRequiredMessage    = "Please set your monthly income first: /income <amount>"
	noOutliersMessage        = "No outlier transactions 🎉"
	cannotGetExpensesMessage = "Can't get your expenses atm. Try later"
	cannotSaveExpenseMessage = "Can't save your expense atm. Try later"
	cannotGetSessionMessage  = "Can't check your session atm. Try later"
)

const (
	startCommand      = "/start"
	loginCommand      = "/login"
	logoutCommand     = "/logout"
	incomeCommand     = "/income"
	expenseCommand    = "/expense"
	listCommand       = "/list"
	editCommand       = "/edit"
	deleteCommand     = "/delete"
	reportCommand     = "/report"
	trendCommand      = "/trend"
	topDaysCommand    = "/topdays"
	outliersCommand   = "/outliers"
	volatilityCommand = "/volatility"
	avgCommand        = "/avg"
	ratioCommand      = "/ratio"
)

const topDaysCount = 3

type ExpenseStorage interface {
	Load(ctx context.Context, user string) (expense.Log, error)
	Append(ctx context.Context, user string, rec expense.Record) (expense.Record, error)
	Overwrite(ctx context.Context, user string, log expense.Log) error
}

type SessionStorage interface {
	Get(chatID int64) (session.Session, error)
	Save(chatID int64, sess session.Session) error
	Drop(chatID int64) error
}

type authChecker interface {
	Check(username, password string) bool
}

type config interface {
	Categories() []string
}

type handler func(ctx context.Context, arg string, chatID int64) (string, error)

type handlerMap map[string]handler

type HandlerService struct {
	handlersMap handlerMap
	storage     ExpenseStorage
	sessions    SessionStorage
	auth        authChecker
	converter   *currency.Converter
	categories  []string
}

func newHandler(
	storage ExpenseStorage,
	sessions SessionStorage,
	auth authChecker,
	converter *currency.Converter,
	config config,
) *HandlerService {
	res := &HandlerService{
		handlersMap: nil,
		storage:     storage,
		sessions:    sessions,
		auth:        auth,
		converter:   converter,
		categories:  config.Categories(),
	}
	res.handlersMap = newMap(res)
	return res
}

func (s *HandlerService) HandleMessage(ctx context.Context, text string, chatID int64) (string, error) {
	cmd, arg := parseCommand(text)

	handler, ok := s.handlersMap[cmd]
	if ok {
		return handler(ctx, arg, chatID)
	}
	return dontUnderstandMessage, nil
}

func newMap(s *HandlerService) handlerMap {
	m := make(handlerMap)
	m[startCommand] = s.handleStart
	m[loginCommand] = s.handleLogin
	m[logoutCommand] = s.loggedIn(s.handleLogout)
	m[incomeCommand] = s.loggedIn(s.handleIncome)
	m[expenseCommand] = s.loggedIn(s.handleExpense)
	m[listCommand] = s.loggedIn(s.handleList)
	m[editCommand] = s.loggedIn(s.handleEdit)
	m[deleteCommand] = s.loggedIn(s.handleDelete)
	m[reportCommand] = s.loggedIn(s.handleReport)
	m[trendCommand] = s.loggedIn(s.handleTrend)
	m[topDaysCommand] = s.loggedIn(s.handleTopDays)
	m[outliersCommand] = s.loggedIn(s.handleOutliers)
	m[volatilityCommand] = s.loggedIn(s.handleVolatility)
	m[avgCommand] = s.loggedIn(s.handleAverage)
	m[ratioCommand] = s.loggedIn(s.handleRatio)

	m[""] = s.handleNoCommand

	return m
}

// loggedIn wraps a handler with the session check and passes the
// session user along via the argument closure.
type sessionHandler func(ctx context.Context, arg string, chatID int64, sess session.Session) (string, error)

func (s *HandlerService) loggedIn(next sessionHandler) handler {
	return func(ctx context.Context, arg string, chatID int64) (string, error) {
		sess, err := s.sessions.Get(chatID)
		if err != nil {
			return cannotGetSessionMessage, errors.Wrap(err, "get session")
		}
		if !sess.LoggedIn() {
			return notLoggedInMessage, nil
		}
		return next(ctx, arg, chatID, sess)
	}
}

func (s *HandlerService) handleStart(_ context.Context, _ string, _ int64) (string, error) {
	return helloMessage, nil
}

func (s *HandlerService) handleNoCommand(_ context.Context, _ string, _ int64) (string, error) {
	return loveToTalkMessage, nil
}

func (s *HandlerService) handleLogin(_ context.Context, arg string, chatID int64) (string, error) {
	args := strings.Fields(arg)
	if len(args) != 2 {
		return incorrectUsageMessage, nil
	}
	username, password := args[0], args[1]
	if !s.auth.Check(username, password) {
		return badCredsMessage, nil
	}
	err := s.sessions.Save(chatID, session.Session{User: username})
	if err != nil {
		return cannotGetSessionMessage, errors.Wrap(err, "handle login")
	}
	return fmt.Sprintf(loggedInMessage, username), nil
}

func (s *HandlerService) handleLogout(_ context.Context, _ string, chatID int64, _ session.Session) (string, error) {
	err := s.sessions.Drop(chatID)
	if err != nil {
		return cannotGetSessionMessage, errors.Wrap(err, "handle logout")
	}
	return loggedOutMessage, nil
}

func (s *HandlerService) handleIncome(_ context.Context, arg string, chatID int64, sess session.Session) (string, error) {
	income, err := strconv.ParseFloat(strings.TrimSpace(arg), 64)
	if err != nil || income <= 0 || math.IsNaN(income) || math.IsInf(income, 0) {
		return incorrectIncomeMessage, nil
	}
	sess.Income = income
	if err = s.sessions.Save(chatID, sess); err != nil {
		return cannotGetSessionMessage, errors.Wrap(err, "handle income")
	}
	return fmt.Sprintf(incomeSetMessage, income), nil
}

func (s *HandlerService) handleExpense(ctx context.Context, arg string, _ int64, sess session.Session) (string, error) {
	rec, resp, err := s.parseExpense(arg)
	if resp != "" || err != nil {
		return resp, err
	}

	log, err := s.storage.Load(ctx, sess.User)
	if err != nil {
		return cannotGetExpensesMessage, errors.Wrap(err, "handle expense")
	}
	if log.Contains(rec) {
		return duplicateMessage, nil
	}
	if _, err = s.storage.Append(ctx, sess.User, rec); err != nil {
		return cannotSaveExpenseMessage, errors.Wrap(err, "handle expense")
	}
	return fmt.Sprintf(expenseAddedMessage, s.converter.Base(), rec.Amount), nil
}

func (s *HandlerService) handleList(ctx context.Context, _ string, _ int64, sess session.Session) (string, error) {
	log, err := s.storage.Load(ctx, sess.User)
	if err != nil {
		return cannotGetExpensesMessage, errors.Wrap(err, "handle list")
	}
	if len(log) == 0 {
		return noExpensesMessage, nil
	}
	lines := make([]string, 0, len(log))
	for i, rec := range log {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, formatRecord(rec)))
	}
	return strings.Join(lines, "\n"), nil
}

func (s *HandlerService) handleEdit(ctx context.Context, arg string, _ int64, sess session.Session) (string, error) {
	args := strings.Fields(arg)
	if len(args) < 1 {
		return incorrectUsageMessage, nil
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return incorrectUsageMessage, nil
	}

	rec, resp, err := s.parseExpense(strings.Join(args[1:], " "))
	if resp != "" || err != nil {
		return resp, err
	}

	log, err := s.storage.Load(ctx, sess.User)
	if err != nil {
		return cannotGetExpensesMessage, errors.Wrap(err, "handle edit")
	}
	_, pos, ok := log.ByID(id)
	if !ok {
		return fmt.Sprintf(unknownRecordMessage, id), nil
	}
	rec.ID = id
	log[pos] = rec
	if err = s.storage.Overwrite(ctx, sess.User, log); err != nil {
		return cannotSaveExpenseMessage, errors.Wrap(err, "handle edit")
	}
	return fmt.Sprintf(updatedMessage, id), nil
}

func (s *HandlerService) handleDelete(ctx context.Context, arg string, _ int64, sess session.Session) (string, error) {
	args := strings.Fields(arg)
	if len(args) < 1 {
		return incorrectUsageMessage, nil
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return incorrectUsageMessage, nil
	}

	log, err := s.storage.Load(ctx, sess.User)
	if err != nil {
		return cannotGetExpensesMessage, errors.Wrap(err, "handle delete")
	}
	rec, pos, ok := log.ByID(id)
	if !ok {
		return fmt.Sprintf(unknownRecordMessage, id), nil
	}

	// deletion only happens on an explicit confirmation
	if len(args) < 2 || args[1] != "confirm" {
		return fmt.Sprintf(confirmDeleteMessage, id, formatRecord(rec), id), nil
	}

	log = append(log[:pos], log[pos+1:]...)
	if err = s.storage.Overwrite(ctx, sess.User, log); err != nil {
		return cannotSaveExpenseMessage, errors.Wrap(err, "handle delete")
	}
	return fmt.Sprintf(deletedMessage, id), nil
}

func (s *HandlerService) handleReport(ctx context.Context, _ string, _ int64, sess session.Session) (string, error) {
	log, err := s.storage.Load(ctx, sess.User)
	if err != nil {
		return cannotGetExpensesMessage, errors.Wrap(err, "handle report")
	}
	if len(log) == 0 {
		return noExpensesMessage, nil
	}
	byCat, total := report.ByCategory(log)
	lines := make([]string, 0, len(byCat)+2)
	for _, ca := range byCat {
		lines = append(lines, fmt.Sprintf("%s: %.2f", ca.Category, ca.Amount))
	}
	lines = append(lines, "", fmt.Sprintf("Total: %.2f", total))
	return strings.Join(lines, "\n"), nil
}

func (s *HandlerService) handleTrend(ctx context.Context, _ string, _ int64, sess session.Session) (string, error) {
	log, err := s.storage.Load(ctx, sess.User)
	if err != nil {
		return cannotGetExpensesMessage, errors.Wrap(err, "handle trend")
	}
	if len(log) == 0 {
		return noExpensesMessage, nil
	}
	monthly := report.MonthlySpend(log)
	cumulative := report.CumulativeSpend(log)
	lines := make([]string, 0, len(monthly))
	for i, ma := range monthly {
		lines = append(lines, fmt.Sprintf("%s: %.2f (running %.2f)",
			ma.Month.Format(monthLayout), ma.Amount, cumulative[i].Amount))
	}
	return strings.Join(lines, "\n"), nil
}

func (s *HandlerService) handleTopDays(ctx context.Context, _ string, _ int64, sess session.Session) (string, error) {
	log, err := s.storage.Load(ctx, sess.User)
	if err != nil {
		return cannotGetExpensesMessage, errors.Wrap(err, "handle top days")
	}
	if len(log) == 0 {
		return noExpensesMessage, nil
	}
	days := report.TopDays(log, topDaysCount)
	lines := make([]string, 0, len(days))
	for _, da := range days {
		lines = append(lines, fmt.Sprintf("%s: %.2f", da.Date.Format(expense.DateLayout), da.Amount))
	}
	return strings.Join(lines, "\n"), nil
}

func (s *HandlerService) handleOutliers(ctx context.Context, _ string, _ int64, sess session.Session) (string, error) {
	log, err := s.storage.Load(ctx, sess.User)
	if err != nil {
		return cannotGetExpensesMessage, errors.Wrap(err, "handle outliers")
	}
	if len(log) == 0 {
		return noExpensesMessage, nil
	}
	outliers := report.Outliers(log)
	if len(outliers) == 0 {
		return noOutliersMessage, nil
	}
	lines := make([]string, 0, len(outliers))
	for _, rec := range outliers {
		lines = append(lines, formatRecord(rec))
	}
	return strings.Join(lines, "\n"), nil
}

func (s *HandlerService) handleVolatility(ctx context.Context, _ string, _ int64, sess session.Session) (string, error) {
	log, err := s.storage.Load(ctx, sess.User)
	if err != nil {
		return cannotGetExpensesMessage, errors.Wrap(err, "handle volatility")
	}
	if len(log) == 0 {
		return noExpensesMessage, nil
	}
	lines := make([]string, 0)
	for _, cv := range report.Volatility(log) {
		lines = append(lines, fmt.Sprintf("%s: %.2f", cv.Category, cv.StdDev))
	}
	return strings.Join(lines, "\n"), nil
}

func (s *HandlerService) handleAverage(ctx context.Context, _ string, _ int64, sess session.Session) (string, error) {
	log, err := s.storage.Load(ctx, sess.User)
	if err != nil {
		return cannotGetExpensesMessage, errors.Wrap(err, "handle average")
	}
	if len(log) == 0 {
		return noExpensesMessage, nil
	}
	return fmt.Sprintf("Average spend per transaction: %.2f", report.AverageSpend(log)), nil
}

func (s *HandlerService) handleRatio(ctx context.Context, arg string, _ int64, sess session.Session) (string, error) {
	month, err := time.Parse(monthLayout, strings.TrimSpace(arg))
	if err != nil {
		return incorrectMonthMessage, nil
	}

	log, err := s.storage.Load(ctx, sess.User)
	if err != nil {
		return cannotGetExpensesMessage, errors.Wrap(err, "handle ratio")
	}
	shares, err := report.IncomeRatio(log, month, sess.Income)
	if errors.Is(err, report.ErrIncomeRequired) {
		return incomeRequiredMessage, nil
	}
	if err != nil {
		return cannotGetExpensesMessage, errors.Wrap(err, "handle ratio")
	}
	if len(shares) == 0 {
		return noExpensesMessage, nil
	}
	lines := make([]string, 0, len(shares))
	for _, share := range shares {
		lines = append(lines, fmt.Sprintf("%s: %.2f (%.1f%% of income)",
			share.Category, share.Amount, share.Percent))
	}
	return strings.Join(lines, "\n"), nil
}

// parseExpense turns "<category> <amount> <currency> [dd.mm.yyyy]
// [description...]" into a normalized record. A non-empty response
// means the input was rejected and should be echoed back as is.
func (s *HandlerService) parseExpense(arg string) (expense.Record, string, error) {
	args := strings.Fields(arg)
	if len(args) < 3 {
		return expense.Record{}, incorrectUsageMessage, nil
	}

	category := args[0]
	if !contains(s.categories, category) {
		return expense.Record{}, fmt.Sprintf(unknownCategoryMessage, strings.Join(s.categories, ", ")), nil
	}

	amount, err := strconv.ParseFloat(args[1], 64)
	if err != nil || amount < 0 {
		return expense.Record{}, incorrectExpenseMessage, nil
	}

	curr := args[2]
	normalized, err := s.converter.ToBase(amount, curr)
	if errors.Is(err, currency.ErrUnknownCurrency) {
		return expense.Record{}, fmt.Sprintf(unknownCurrencyMessage, strings.Join(currency.Currencies, ", ")), nil
	}
	if err != nil {
		return expense.Record{}, incorrectExpenseMessage, nil
	}

	y, m, d := time.Now().Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	rest := args[3:]
	if len(rest) > 0 {
		if parsed, parseErr := time.ParseInLocation(inputDateLayout, rest[0], time.UTC); parseErr == nil {
			date = parsed
			rest = rest[1:]
		} else if looksLikeDate(rest[0]) {
			return expense.Record{}, incorrectDateMessage, nil
		}
	}

	return expense.Record{
		Date:        date,
		Category:    category,
		Amount:      normalized,
		Description: strings.Join(rest, " "),
	}, "", nil
}
