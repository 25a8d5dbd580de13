// This file is part of Gopher2600.
//
// Gopher2600 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Gopher2600 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Gopher2600.  If not, see <https://www.gnu.org/licenses/>.

package commandline_test

import (
	"testing"

	"cortexdbg/cli/commandline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidation_required(t *testing.T) {
	var cmds *commandline.Commands
	var err error

	cmds, err = commandline.ParseCommandTemplate([]string{"TEST [arg]"})
	require.NoError(t, err)

	err = cmds.Validate("TEST arg foo")
	if assert.Error(t, err) {
		assert.Equal(t, err.Error(), "unrecognised argument (foo) for TEST")
	}

	err = cmds.Validate("TEST arg")
	assert.NoError(t, err)

	err = cmds.Validate("TEST")
	if assert.Error(t, err) {
		assert.Equal(t, err.Error(), "ARG required")
	}
}

func TestValidation_optional(t *testing.T) {
	var cmds *commandline.Commands
	var err error

	cmds, err = commandline.ParseCommandTemplate([]string{"TEST (arg)"})
	require.NoError(t, err)

	err = cmds.Validate("TEST")
	assert.NoError(t, err)

	err = cmds.Validate("TEST arg")
	assert.NoError(t, err)

	err = cmds.Validate("TEST arg foo")
	assert.Error(t, err)

	err = cmds.Validate("TEST foo")
	assert.Error(t, err)
}

func TestValidation_optional2(t *testing.T) {
	var cmds *commandline.Commands
	var err error

	cmds, err = commandline.ParseCommandTemplate([]string{"TEST (arg [%s]|bar)"})
	require.NoError(t, err)

	err = cmds.Validate("TEST xxxxx")
	if assert.Error(t, err) {
		assert.Equal(t, err.Error(), "unrecognised argument (xxxxx) for TEST")
	}
}

func TestValidation_branchesAndNumeric(t *testing.T) {
	var cmds *commandline.Commands
	var err error

	cmds, err = commandline.ParseCommandTemplate([]string{"TEST (arg [%N]|foo)"})
	require.NoError(t, err)

	err = cmds.Validate("TEST")
	assert.NoError(t, err)

	err = cmds.Validate("TEST arg")
	assert.Error(t, err)

	// numeric argument matching
	err = cmds.Validate("TEST arg 10")
	assert.NoError(t, err)

	// failing a numeric argument match
	err = cmds.Validate("TEST arg bar")
	assert.Error(t, err)

	// ---------------

	cmds, err = commandline.ParseCommandTemplate([]string{"TEST (arg|foo) %N"})
	require.NoError(t, err)

	err = cmds.Validate("TEST arg")
	assert.Error(t, err)

	err = cmds.Validate("TEST arg 10")
	assert.NoError(t, err)

	err = cmds.Validate("TEST 10")
	assert.NoError(t, err)
}

func TestValidation_deepBranches(t *testing.T) {
	var cmds *commandline.Commands
	var err error

	// retry numeric argument matching but with an option for a specific string
	cmds, err = commandline.ParseCommandTemplate([]string{"TEST (arg [%N|bar]|foo)"})
	require.NoError(t, err)

	err = cmds.Validate("TEST arg bar")
	assert.NoError(t, err)

	err = cmds.Validate("TEST arg foo")
	assert.Error(t, err)
}

func TestValidation_tripleBranches(t *testing.T) {
	var cmds *commandline.Commands
	var err error

	cmds, err = commandline.ParseCommandTemplate([]string{"TEST (arg|foo|bar) wibble"})
	require.NoError(t, err)

	err = cmds.Validate("TEST foo wibble")
	assert.NoError(t, err)

	err = cmds.Validate("TEST bar wibble")
	assert.NoError(t, err)

	err = cmds.Validate("TEST wibble")
	assert.NoError(t, err)
}

func TestValidation_doubleArgs(t *testing.T) {
	var cmds *commandline.Commands
	var err error

	cmds, err = commandline.ParseCommandTemplate([]string{"TEST (nug nog|egg|cream) (tug)"})
	require.NoError(t, err)

	err = cmds.Validate("TEST nug nog")
	assert.NoError(t, err)

	err = cmds.Validate("TEST egg tug")
	assert.NoError(t, err)

	err = cmds.Validate("TEST nug nog tug")
	assert.NoError(t, err)

	// ---------------

	cmds, err = commandline.ParseCommandTemplate([]string{"TEST (egg|fog|nug nog|big) (tug)"})
	require.NoError(t, err)

	err = cmds.Validate("TEST nug nog")
	assert.NoError(t, err)

	err = cmds.Validate("TEST fog tug")
	assert.NoError(t, err)

	err = cmds.Validate("TEST nug nog tug")
	assert.NoError(t, err)
}

func TestValidation_filenameFirstArg(t *testing.T) {
	var cmds *commandline.Commands
	var err error

	cmds, err = commandline.ParseCommandTemplate([]string{"TEST [%F|foo [wibble]|bar]"})
	require.NoError(t, err)

	err = cmds.Validate("TEST foo wibble")
	assert.NoError(t, err)
}

func TestValidation_singluarOption(t *testing.T) {
	var cmds *commandline.Commands
	var err error

	cmds, err = commandline.ParseCommandTemplate([]string{"SCRIPT [RECORD (REGRESSION) [%S]|END|%F]"})
	require.NoError(t, err)

	err = cmds.Validate("SCRIPT foo")
	assert.NoError(t, err)

	err = cmds.Validate("SCRIPT END")
	assert.NoError(t, err)

	err = cmds.Validate("SCRIPT RECORD foo")
	assert.NoError(t, err)

	err = cmds.Validate("SCRIPT RECORD REGRESSION foo")
	assert.NoError(t, err)

	err = cmds.Validate("SCRIPT RECORD REGRESSION foo end")
	assert.Error(t, err)
}

func TestValidation_nestedGroups(t *testing.T) {
	var cmds *commandline.Commands
	var err error

	cmds, err = commandline.ParseCommandTemplate([]string{"TEST [(foo|baz)|bar]"})
	require.NoError(t, err)

	err = cmds.Validate("TEST foo")
	assert.NoError(t, err)
	err = cmds.Validate("TEST bar")
	assert.NoError(t, err)
	err = cmds.Validate("TEST wibble")
	assert.Error(t, err)

	cmds, err = commandline.ParseCommandTemplate([]string{"TEST (foo|[bar|(baz|qux)]|wibble)"})
	require.NoError(t, err)

	err = cmds.Validate("TEST foo")
	assert.NoError(t, err)
	err = cmds.Validate("TEST wibble")
	assert.NoError(t, err)
	err = cmds.Validate("TEST bar")
	assert.NoError(t, err)
}

func TestValidation_repeatGroups(t *testing.T) {
	var cmds *commandline.Commands
	var err error

	cmds, err = commandline.ParseCommandTemplate([]string{"TEST {foo}"})
	require.NoError(t, err)

	err = cmds.Validate("TEST foo")
	assert.NoError(t, err)
	err = cmds.Validate("TEST foo foo")
	assert.NoError(t, err)

	cmds, err = commandline.ParseCommandTemplate([]string{"TEST {foo|bar|baz}"})
	require.NoError(t, err)

	err = cmds.Validate("TEST foo")
	assert.NoError(t, err)
	err = cmds.Validate("TEST foo foo")
	assert.NoError(t, err)

	err = cmds.Validate("TEST bar foo")
	assert.NoError(t, err)

	err = cmds.Validate("TEST bar foo baz baz")
	assert.NoError(t, err)

	cmds, err = commandline.ParseCommandTemplate([]string{"TEST [foo|bar {baz|qux}]"})
	require.NoError(t, err)

	err = cmds.Validate("TEST foo")
	assert.NoError(t, err)
	err = cmds.Validate("TEST bar")
	assert.NoError(t, err)
	err = cmds.Validate("TEST bar baz")
	assert.NoError(t, err)
	err = cmds.Validate("TEST bar baz qux")
	assert.NoError(t, err)

	err = cmds.Validate("TEST foo bar")
	assert.Error(t, err)

	err = cmds.Validate("TEST bar baz bar")
	assert.Error(t, err)

	err = cmds.Validate("TEST bar baz qux qux baz wibble")
	assert.Error(t, err)

	cmds, err = commandline.ParseCommandTemplate([]string{"TEST {[foo]}"})
	require.NoError(t, err)

	err = cmds.Validate("TEST")
	assert.NoError(t, err)
	err = cmds.Validate("TEST foo")
	assert.NoError(t, err)
	err = cmds.Validate("TEST foo foo")
	assert.NoError(t, err)

	cmds, err = commandline.ParseCommandTemplate([]string{"TEST {(foo)}"})
	require.NoError(t, err)

	err = cmds.Validate("TEST")
	assert.NoError(t, err)
	err = cmds.Validate("TEST foo")
	assert.NoError(t, err)
	err = cmds.Validate("TEST foo foo")
	assert.NoError(t, err)
}

func TestValidation_foo(t *testing.T) {
	var cmds *commandline.Commands
	var err error

	cmds, err = commandline.ParseCommandTemplate([]string{"SYMBOL [%S (ALL|MIRRORS)|LIST]"})
	require.NoError(t, err)

	err = cmds.Validate("SYMBOL enabl")
	assert.NoError(t, err)
}

func TestValidation_bar(t *testing.T) {
	var cmds *commandline.Commands
	var err error

	cmds, err = commandline.ParseCommandTemplate([]string{
		"LIST",
		"PRINT [%s]",
		"SORT (RISING|FALLING)",
	})
	require.NoError(t, err)

	err = cmds.Validate("list")
	assert.NoError(t, err)
}

func TestValidation_optional_group(t *testing.T) {
	var cmds *commandline.Commands
	var err error

	cmds, err = commandline.ParseCommandTemplate([]string{
		"PREF [SET|NO|TOGGLE] [RANDSTART|RANDPINS]",
	})
	require.NoError(t, err)

	err = cmds.Validate("pref")
	if assert.Error(t, err) {
		assert.Equal(t, err.Error(), "SET or NO or TOGGLE required")
	}

	err = cmds.Validate("pref set")
	if assert.Error(t, err) {
		assert.Equal(t, err.Error(), "RANDSTART or RANDPINS required")
	}

	err = cmds.Validate("pref set randstart")
	assert.NoError(t, err)

	// same as above except that the required argument sequence (in its
	// entirity) is optional

	cmds, err = commandline.ParseCommandTemplate([]string{
		"PREF ([SET|NO|TOGGLE] [RANDSTART|RANDPINS])",
	})
	assert.NoError(t, err)

	err = cmds.Validate("pref")
	assert.NoError(t, err)

	err = cmds.Validate("pref set")
	if assert.Error(t, err) {
		assert.Equal(t, err.Error(), "RANDSTART or RANDPINS required")
	}

	err = cmds.Validate("pref set randstart")
	assert.NoError(t, err)
}

func TestValidation_BREAK_style(t *testing.T) {
	var cmds *commandline.Commands
	var err error

	cmds, err = commandline.ParseCommandTemplate([]string{"YYYYY [%s %n| %s] {& %s %n|& %s}"})
	require.NoError(t, err)

	err = cmds.Validate("YYYYY SL 100")
	assert.NoError(t, err)
}
