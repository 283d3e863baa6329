package messages

import (
	"fmt"
	"strings"

	"max.ks1230/expense-tracker/internal/entity/expense"
)

const (
	commandParts    = 2
	inputDateLayout = "02.01.2006"
	monthLayout     = "2006-01"
)

func parseCommand(text string) (cmd, arg string) {
	text = strings.TrimSpace(text)
	split := strings.SplitN(text, " ", commandParts)

	if len(split) == commandParts {
		return split[0], split[1]
	}
	if strings.HasPrefix(text, "/") {
		return text, ""
	}
	return "", text
}

func formatRecord(rec expense.Record) string {
	res := fmt.Sprintf("#%d %s %s %.2f",
		rec.ID, rec.Date.Format(expense.DateLayout), rec.Category, rec.Amount)
	if rec.Description != "" {
		res += " " + rec.Description
	}
	return res
}

func contains(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}

// looksLikeDate distinguishes a mistyped date from the start of a free
// text description: descriptions do not begin with digit.digit pairs.
func looksLikeDate(token string) bool {
	dots := strings.Count(token, ".")
	if dots != 2 {
		return false
	}
	for _, part := range strings.Split(token, ".") {
		if part == "" {
			return false
		}
		for _, r := range part {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}
