package cli

import "testing"

func TestRootRegistersCommands(t *testing.T) {
	want := []string{"forecast", "compute", "assets", "summarize", "watch", "show", "prune", "version", "simulate-alert"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("command %q not registered (got %v, err %v)", name, cmd, err)
		}
	}
}
