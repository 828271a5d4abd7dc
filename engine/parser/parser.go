// Package parser converts command strings into Command values.
// Intentionally dumb: no NLP, just verb lookup.
package parser

import (
	"strings"

	"github.com/buildkite/shellwords"
	"github.com/pkg/errors"

	"github.com/nathoo/sagacore/types"
)

// ErrEmptyInput is returned for blank lines. Callers should re-prompt.
var ErrEmptyInput = errors.New("empty input")

var directionExpansions = map[string]string{
	"n":     types.North,
	"s":     types.South,
	"e":     types.East,
	"w":     types.West,
	"north": types.North,
	"south": types.South,
	"east":  types.East,
	"west":  types.West,
}

var verbAliases = map[string]types.Verb{
	"help": types.VerbHelp,
	"?":    types.VerbHelp,

	"look": types.VerbLook,
	"l":    types.VerbLook,

	"inventory": types.VerbInventory,
	"inv":       types.VerbInventory,
	"i":         types.VerbInventory,

	"quit": types.VerbQuit,
	"exit": types.VerbQuit,
	"q":    types.VerbQuit,

	"go":   types.VerbMove,
	"move": types.VerbMove,

	"take": types.VerbTake,
	"get":  types.VerbTake,
	"drop": types.VerbDrop,
	"use":  types.VerbUse,
	"say":  types.VerbSay,

	"examine": types.VerbExamine,
	"x":       types.VerbExamine,

	"attack": types.VerbAttack,
	"fight":  types.VerbAttack,
	"kill":   types.VerbAttack,

	"status": types.VerbStatus,
	"stats":  types.VerbStatus,

	"wear":  types.VerbWear,
	"wield": types.VerbWield,

	"quests":   types.VerbQuests,
	"journal":  types.VerbQuests,
	"accept":   types.VerbAccept,
	"complete": types.VerbComplete,
}

// Verbs that are meaningless without an argument.
var needsArg = map[types.Verb]bool{
	types.VerbTake:     true,
	types.VerbDrop:     true,
	types.VerbUse:      true,
	types.VerbSay:      true,
	types.VerbExamine:  true,
	types.VerbWear:     true,
	types.VerbWield:    true,
	types.VerbAccept:   true,
	types.VerbComplete: true,
}

// Tokenize splits a line POSIX-shell style so quoted arguments stay whole,
// falling back to plain whitespace splitting on unbalanced quotes.
func Tokenize(line string) []string {
	tokens, err := shellwords.SplitPosix(line)
	if err != nil {
		return strings.Fields(line)
	}
	return tokens
}

// Parse converts a raw command line into a Command. Only the verb is
// case-folded; the argument keeps its original casing. Quotes group words
// and are removed, so `take "Ancient Key"` names the Ancient Key.
func Parse(input string) (types.Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return types.Command{}, ErrEmptyInput
	}
	unknown := types.Command{Verb: types.VerbUnknown, Raw: raw}

	tokens := Tokenize(raw)
	if len(tokens) == 0 || tokens[0] == "" {
		return unknown, nil
	}
	word := strings.ToLower(tokens[0])
	rest := strings.TrimSpace(strings.Join(tokens[1:], " "))

	// Bare direction: "n", "South".
	if dir, ok := directionExpansions[word]; ok {
		if rest != "" {
			return unknown, nil
		}
		return types.Command{Verb: types.VerbMove, Direction: dir, Raw: raw}, nil
	}

	verb, ok := verbAliases[word]
	if !ok {
		return unknown, nil
	}

	switch verb {
	case types.VerbMove:
		dir, ok := directionExpansions[strings.ToLower(rest)]
		if !ok {
			return unknown, nil
		}
		return types.Command{Verb: types.VerbMove, Direction: dir, Raw: raw}, nil

	case types.VerbLook:
		// "look <thing>" and "look at <thing>" examine it; a bare
		// "look at" is a plain look.
		target := rest
		if lower := strings.ToLower(target); lower == "at" {
			target = ""
		} else if strings.HasPrefix(lower, "at ") {
			target = strings.TrimSpace(target[3:])
		}
		if target != "" {
			return types.Command{Verb: types.VerbExamine, Arg: target, Raw: raw}, nil
		}
		return types.Command{Verb: types.VerbLook, Raw: raw}, nil
	}

	if needsArg[verb] && rest == "" {
		return unknown, nil
	}
	return types.Command{Verb: verb, Arg: rest, Raw: raw}, nil
}
