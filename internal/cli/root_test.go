package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "pre", cmd.Use)
	assert.Contains(t, cmd.Short, "precondition")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"rewrite", "check", "mirror", "doc", "index", "contracts"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestRewriteCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	rewriteCmd, _, err := cmd.Find([]string{"rewrite"})
	require.NoError(t, err)

	outdirFlag := rewriteCmd.Flags().Lookup("outdir")
	require.NotNil(t, outdirFlag)
	assert.Equal(t, "o", outdirFlag.Shorthand)
	assert.Equal(t, "pre-out", outdirFlag.DefValue)

	require.NotNil(t, rewriteCmd.Flags().Lookup("overlay"))
	require.NotNil(t, rewriteCmd.Flags().Lookup("tag"))

	strategyFlag := rewriteCmd.Flags().Lookup("strategy")
	require.NotNil(t, strategyFlag)
	assert.Equal(t, "structural", strategyFlag.DefValue)
}

func TestCheckCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	checkCmd, _, err := cmd.Find([]string{"check"})
	require.NoError(t, err)

	require.NotNil(t, checkCmd.Flags().Lookup("tag"))
	require.NotNil(t, checkCmd.Flags().Lookup("strategy"))
	require.NotNil(t, checkCmd.Flags().Lookup("support"))
}

func TestMirrorCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	mirrorCmd, _, err := cmd.Find([]string{"mirror"})
	require.NoError(t, err)

	outFlag := mirrorCmd.Flags().Lookup("out")
	require.NotNil(t, outFlag)
	assert.Equal(t, "o", outFlag.Shorthand)
	// default is stdout
	assert.Equal(t, "", outFlag.DefValue)
}

func TestIndexCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	indexCmd, _, err := cmd.Find([]string{"index"})
	require.NoError(t, err)

	dbFlag := indexCmd.Flags().Lookup("db")
	require.NotNil(t, dbFlag)
	assert.Equal(t, DefaultIndexPath, dbFlag.DefValue)
}

func TestContractsCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	contractsCmd, _, err := cmd.Find([]string{"contracts"})
	require.NoError(t, err)

	dbFlag := contractsCmd.Flags().Lookup("db")
	require.NotNil(t, dbFlag)
	assert.Equal(t, DefaultIndexPath, dbFlag.DefValue)

	require.NotNil(t, contractsCmd.Flags().Lookup("file"))
}

func TestInvalidFormatRejected(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--format", "xml", "check", "nonexistent.go"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestValidFormats(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))
	assert.False(t, isValidFormat("yaml"))
	assert.False(t, isValidFormat(""))
}
