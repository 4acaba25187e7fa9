// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package arrayd

import (
	"strconv"
	"strings"
)

// Command is a structured wire command: a verb, an ordered operand
// list, and an optional binary payload. Operands are appended through
// typed helpers and serialized by [Command.Encode], which is the single
// place the "verb op1 op2 ..." grammar is produced.
type Command struct {
	verb     string
	operands []string
	payload  []byte
}

// NewCommand starts a command with the given verb.
func NewCommand(verb string) *Command {
	return &Command{verb: verb}
}

// AddName appends a handle identifier operand.
func (c *Command) AddName(name string) { c.operands = append(c.operands, name) }

// AddString appends a raw string operand (object kinds, modes, operator
// symbols). The operand is validated at encode time like any other.
func (c *Command) AddString(s string) { c.operands = append(c.operands, s) }

// AddObjType appends an object-kind operand.
func (c *Command) AddObjType(t ObjType) { c.operands = append(c.operands, string(t)) }

// AddDType appends a dtype operand.
func (c *Command) AddDType(dt DType) { c.operands = append(c.operands, string(dt)) }

// AddBool appends a boolean operand in canonical text form.
func (c *Command) AddBool(v bool) { c.operands = append(c.operands, strconv.FormatBool(v)) }

// AddInt appends an integer operand as decimal text.
func (c *Command) AddInt(v int64) { c.operands = append(c.operands, strconv.FormatInt(v, 10)) }

// SetPayload attaches a binary payload to the command.
func (c *Command) SetPayload(p []byte) { c.payload = p }

// Verb returns the command verb.
func (c *Command) Verb() string { return c.verb }

// Operands returns the operand list. Servers index into it positionally.
func (c *Command) Operands() []string { return c.operands }

// Payload returns the attached binary payload, or nil.
func (c *Command) Payload() []byte { return c.payload }

// Encode serializes the command to its single-line wire form. Encoding
// fails if the verb or any operand is empty, contains whitespace, or
// contains the reply delimiter; the grammar has no escaping.
func (c *Command) Encode() (string, error) {
	if err := validToken(c.verb); err != nil {
		return "", err
	}
	for _, op := range c.operands {
		if err := validToken(op); err != nil {
			return "", err
		}
	}
	if len(c.operands) == 0 {
		return c.verb, nil
	}
	return c.verb + " " + strings.Join(c.operands, " "), nil
}

// String renders the command for logging without validation.
func (c *Command) String() string {
	if len(c.operands) == 0 {
		return c.verb
	}
	return c.verb + " " + strings.Join(c.operands, " ")
}

func validToken(s string) error {
	if s == "" {
		return valueErrorf("empty command token")
	}
	if strings.ContainsAny(s, " \t\r\n") {
		return valueErrorf("command token %q contains whitespace", s)
	}
	if strings.Contains(s, ReplyDelimiter) {
		return valueErrorf("command token %q contains the reply delimiter", s)
	}
	return nil
}

// ParseCommand parses the single-line wire form back into a Command.
// Servers use it; the payload, if any, is attached by the transport.
func ParseCommand(line string) (*Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, valueErrorf("empty command")
	}
	return &Command{verb: fields[0], operands: fields[1:]}, nil
}
