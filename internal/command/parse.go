// Package command turns REPL input lines into ledger operations and renders
// their results.
//
// Input uses prefixed arguments, e.g.
//
//	add d/lunch n/John f/Jane a/28 f/Jeremy a/10
//	addequal d/trip n/Eve f/Frank f/Gina a/90
//	edit i/1 a/20 o/Jane
//
// The parser only checks syntax. Semantic checks (duplicate friends, bad names,
// limits, paid state) belong to the ledger.
package command

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FormatError reports input that does not match a command's syntax.
type FormatError struct {
	Reason string
	Usage  string
}

func (e *FormatError) Error() string {
	if e.Usage == "" {
		return "INPUT ERROR: " + e.Reason
	}
	return fmt.Sprintf("INPUT ERROR: %s\nCorrect format should be: %s", e.Reason, e.Usage)
}

const (
	usageAdd      = "add d/DESCRIPTION n/PAYER f/FRIEND1 a/AMOUNT_OWED_1 f/FRIEND2 a/AMOUNT_OWED_2..."
	usageAddEqual = "addequal d/DESCRIPTION n/PAYER f/FRIEND1 f/FRIEND2 ... a/TOTAL_AMOUNT"
	usageDelete   = "delete i/ID"
	usageEdit     = "edit i/ID d/DESCRIPTION | edit i/ID n/NEWNAME | edit i/ID f/NEWNAME o/OLDNAME | edit i/ID a/NEWAMOUNT o/NAME"
	usagePaid     = "paid i/ID n/NAME"
	usageUnpaid   = "unpaid i/ID n/NAME"
	usageList     = "list | list n/NAME | list balance n/NAME"
	usageChange   = "change g/GROUP"
)

const commandList = "add | addequal | delete | edit | list | split | paid | unpaid | change | groups | exit | help"

// validate checks the syntax-level shape of parsed requests.
var validate = validator.New()

// argPrefix matches a one letter prefix such as "d/" at the start of an argument.
var argPrefix = regexp.MustCompile(`(?:^|\s)([a-zA-Z])/`)

type arg struct {
	key   byte
	value string
}

// splitArgs breaks "d/lunch n/John f/Jane a/28" into ordered key/value pairs.
// Keys are lowercased. Anything before the first prefix is returned as rest.
func splitArgs(s string) (args []arg, rest string) {
	locs := argPrefix.FindAllStringSubmatchIndex(s, -1)
	if len(locs) == 0 {
		return nil, strings.TrimSpace(s)
	}
	rest = strings.TrimSpace(s[:locs[0][0]])
	for i, loc := range locs {
		end := len(s)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		key := strings.ToLower(s[loc[2]:loc[3]])[0]
		args = append(args, arg{key: key, value: strings.TrimSpace(s[loc[1]:end])})
	}
	return args, rest
}

// Parse decodes one line of input.
func Parse(line string) (Command, error) {
	line = strings.TrimSpace(line)
	word, body, _ := strings.Cut(line, " ")
	switch strings.ToLower(word) {
	case "add":
		return parseAdd(body)
	case "addequal":
		return parseAddEqual(body)
	case "delete":
		return parseDelete(body)
	case "edit":
		return parseEdit(body)
	case "paid":
		i, name, err := parsePaid(body, usagePaid)
		return &MarkPaid{Index: i, Name: name, Paid: true}, err
	case "unpaid":
		i, name, err := parsePaid(body, usageUnpaid)
		return &MarkPaid{Index: i, Name: name, Paid: false}, err
	case "list":
		return parseList(body)
	case "split":
		return &Split{}, nil
	case "change":
		return parseChange(body)
	case "groups":
		return &Groups{}, nil
	case "help":
		return &Help{}, nil
	case "exit":
		return &Exit{}, nil
	default:
		return nil, &FormatError{Reason: "Invalid command entered\nTry these commands: " + commandList}
	}
}

type addRequest struct {
	Description string        `validate:"required"`
	Payer       string        `validate:"required"`
	Friends     []friendShare `validate:"required,min=1,dive"`
}

type friendShare struct {
	Name   string `validate:"required"`
	Amount string `validate:"required,numeric"`
}

func parseAdd(body string) (Command, error) {
	args, rest := splitArgs(body)
	if rest != "" {
		return nil, &FormatError{Reason: "Extra parameters detected", Usage: usageAdd}
	}

	req := addRequest{}
	var err error
	if req.Description, err = single(args, 'd', usageAdd); err != nil {
		return nil, err
	}
	if req.Payer, err = single(args, 'n', usageAdd); err != nil {
		return nil, err
	}

	current := -1
	for _, a := range args {
		switch a.key {
		case 'd', 'n':
		case 'f':
			if current >= 0 && req.Friends[current].Amount == "" {
				return nil, &FormatError{Reason: "Amount owed is not entered for 1 or more friends", Usage: usageAdd}
			}
			req.Friends = append(req.Friends, friendShare{Name: a.value})
			current = len(req.Friends) - 1
		case 'a':
			if current < 0 {
				return nil, &FormatError{Reason: "Amount entered before any friend", Usage: usageAdd}
			}
			if req.Friends[current].Amount != "" {
				return nil, &FormatError{Reason: "Multiple amounts entered for 1 or more friends", Usage: usageAdd}
			}
			req.Friends[current].Amount = a.value
		default:
			return nil, &FormatError{Reason: fmt.Sprintf("Unknown parameter %c/", a.key), Usage: usageAdd}
		}
	}

	if err := checkRequest(req, usageAdd); err != nil {
		return nil, err
	}
	cmd := &Add{Description: req.Description, Payer: req.Payer}
	for _, f := range req.Friends {
		amount, err := parseMoney(f.Amount, usageAdd)
		if err != nil {
			return nil, err
		}
		cmd.Shares = append(cmd.Shares, shareOf(f.Name, amount))
	}
	return cmd, nil
}

type addEqualRequest struct {
	Description string   `validate:"required"`
	Payer       string   `validate:"required"`
	Friends     []string `validate:"required,min=1,dive,required"`
	Total       string   `validate:"required,numeric"`
}

func parseAddEqual(body string) (Command, error) {
	args, rest := splitArgs(body)
	if rest != "" {
		return nil, &FormatError{Reason: "Extra parameters detected", Usage: usageAddEqual}
	}

	req := addEqualRequest{}
	var err error
	if req.Description, err = single(args, 'd', usageAddEqual); err != nil {
		return nil, err
	}
	if req.Payer, err = single(args, 'n', usageAddEqual); err != nil {
		return nil, err
	}
	if req.Total, err = single(args, 'a', usageAddEqual); err != nil {
		return nil, err
	}
	for _, a := range args {
		switch a.key {
		case 'd', 'n', 'a':
		case 'f':
			req.Friends = append(req.Friends, a.value)
		default:
			return nil, &FormatError{Reason: fmt.Sprintf("Unknown parameter %c/", a.key), Usage: usageAddEqual}
		}
	}
	if err := checkRequest(req, usageAddEqual); err != nil {
		return nil, err
	}
	total, err := parseMoney(req.Total, usageAddEqual)
	if err != nil {
		return nil, err
	}
	return &AddEqual{Description: req.Description, Payer: req.Payer, Friends: req.Friends, Total: total}, nil
}

func parseDelete(body string) (Command, error) {
	args, rest := splitArgs(body)
	if rest != "" || len(args) != 1 {
		return nil, &FormatError{Reason: "Incorrect delete command format", Usage: usageDelete}
	}
	i, err := identifier(args, usageDelete)
	if err != nil {
		return nil, err
	}
	return &Delete{Index: i}, nil
}

func parseEdit(body string) (Command, error) {
	args, rest := splitArgs(body)
	if rest != "" {
		return nil, &FormatError{Reason: "Invalid edit format", Usage: usageEdit}
	}
	i, err := identifier(args, usageEdit)
	if err != nil {
		return nil, err
	}

	fields := make(map[byte]string)
	for _, a := range args {
		if _, dup := fields[a.key]; dup {
			return nil, &FormatError{Reason: "Invalid edit format", Usage: usageEdit}
		}
		fields[a.key] = a.value
	}
	delete(fields, 'i')

	old, hasOld := fields['o']
	switch {
	case len(fields) == 1 && fields['d'] != "":
		return &Edit{Index: i, Field: EditFieldDescription, Value: fields['d']}, nil
	case len(fields) == 1 && fields['n'] != "":
		return &Edit{Index: i, Field: EditFieldPayer, Value: fields['n']}, nil
	case len(fields) == 2 && hasOld && old != "" && fields['f'] != "":
		return &Edit{Index: i, Field: EditFieldFriend, Old: old, Value: fields['f']}, nil
	case len(fields) == 2 && hasOld && old != "" && fields['a'] != "":
		amount, err := parseMoney(fields['a'], usageEdit)
		if err != nil {
			return nil, err
		}
		return &Edit{Index: i, Field: EditFieldAmount, Old: old, Amount: amount}, nil
	default:
		return nil, &FormatError{Reason: "Invalid edit format", Usage: usageEdit}
	}
}

func parsePaid(body, usage string) (int, string, error) {
	args, rest := splitArgs(body)
	if rest != "" || len(args) != 2 {
		return 0, "", &FormatError{Reason: "Invalid format", Usage: usage}
	}
	i, err := identifier(args, usage)
	if err != nil {
		return 0, "", err
	}
	name, err := single(args, 'n', usage)
	if err != nil {
		return 0, "", err
	}
	return i, name, nil
}

func parseList(body string) (Command, error) {
	args, rest := splitArgs(body)
	switch {
	case rest == "" && len(args) == 0:
		return &List{}, nil
	case rest == "" && len(args) == 1:
		name, err := single(args, 'n', usageList)
		if err != nil {
			return nil, err
		}
		return &List{Name: name}, nil
	case strings.EqualFold(rest, "balance") && len(args) == 1:
		name, err := single(args, 'n', usageList)
		if err != nil {
			return nil, err
		}
		return &List{Name: name, Balance: true}, nil
	default:
		return nil, &FormatError{Reason: "Invalid list format", Usage: usageList}
	}
}

func parseChange(body string) (Command, error) {
	args, rest := splitArgs(body)
	if rest != "" || len(args) != 1 {
		return nil, &FormatError{Reason: "Invalid group", Usage: usageChange}
	}
	name, err := single(args, 'g', usageChange)
	if err != nil {
		return nil, err
	}
	return &Change{Group: name}, nil
}

// single returns the value of the only argument with key.
func single(args []arg, key byte, usage string) (string, error) {
	var (
		value string
		found bool
	)
	for _, a := range args {
		if a.key != key {
			continue
		}
		if found {
			return "", &FormatError{Reason: fmt.Sprintf("Multiple %c/ parameters entered", key), Usage: usage}
		}
		value, found = a.value, true
	}
	if !found || value == "" {
		return "", &FormatError{Reason: missingReason(key), Usage: usage}
	}
	return value, nil
}

// identifier parses the 1-based i/ID argument into a 0-based position.
func identifier(args []arg, usage string) (int, error) {
	raw, err := single(args, 'i', usage)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &FormatError{Reason: "Invalid identifier entered, should be an integer: " + raw}
	}
	return n - 1, nil
}

func missingReason(key byte) string {
	switch key {
	case 'd':
		return "No activity description, d/DESCRIPTION"
	case 'n':
		return "No name entered, n/NAME"
	case 'i':
		return "No identifier entered, i/IDENTIFIER"
	case 'a':
		return "Amount is not entered"
	case 'g':
		return "No group entered, g/GROUP"
	default:
		return fmt.Sprintf("Missing %c/ parameter", key)
	}
}

func checkRequest(req any, usage string) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return &FormatError{Reason: err.Error(), Usage: usage}
	}
	fe := verrs[0]
	field := fe.StructField()
	switch {
	case fe.Tag() == "numeric":
		return &FormatError{Reason: fmt.Sprintf("Amount is not a number: %v", fe.Value())}
	case field == "Friends":
		return &FormatError{Reason: "No friends were entered", Usage: usage}
	case field == "Name" || strings.HasPrefix(field, "Friends["):
		return &FormatError{Reason: "Invalid friend entered", Usage: usage}
	case field == "Amount":
		return &FormatError{Reason: "Amount owed is not entered for 1 or more friends", Usage: usage}
	default:
		return &FormatError{Reason: fmt.Sprintf("%s is required", field), Usage: usage}
	}
}
