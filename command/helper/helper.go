package helper

import (
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/ryanuber/columnize"
	"github.com/spf13/cobra"

	"github.com/0xPolygon/edge-vault/command"
	"github.com/0xPolygon/edge-vault/server"
	"github.com/0xPolygon/edge-vault/types"
)

// IPBinding is the IP the resolved TCP address falls back to when the
// raw value carries a port only
type IPBinding string

const (
	LocalHostBinding     IPBinding = "127.0.0.1"
	AllInterfacesBinding IPBinding = "0.0.0.0"
)

// ClientCloseResult is rendered when a long-running client winds down
type ClientCloseResult struct {
	Message string `json:"message"`
}

func (r *ClientCloseResult) GetOutput() string {
	return r.Message
}

// RegisterJSONOutputFlag registers the --json output setting for all child commands
func RegisterJSONOutputFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().Bool(
		command.JSONOutputFlag,
		false,
		"get all outputs in json format (default false)",
	)
}

// RegisterJSONRPCFlag registers the base JSON-RPC address flag for all child commands
func RegisterJSONRPCFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().String(
		command.JSONRPCFlag,
		fmt.Sprintf("http://127.0.0.1:%d", server.DefaultJSONRPCPort),
		"the JSON-RPC interface",
	)
}

// GetJSONRPCAddress extracts the JSON-RPC address from the flag
func GetJSONRPCAddress(cmd *cobra.Command) string {
	return cmd.Flag(command.JSONRPCFlag).Value.String()
}

// ValidateAddress checks that raw is a well-formed hex address and not the zero address
func ValidateAddress(raw string) error {
	if err := types.IsValidAddress(raw); err != nil {
		return err
	}

	if types.StringToAddress(raw) == types.ZeroAddress {
		return errors.New("the zero address cannot be used")
	}

	return nil
}

// ResolveAddr resolves the passed in TCP address.
// The second param is the default ip to bind to, if no ip address is specified.
func ResolveAddr(address string, defaultIP IPBinding) (*net.TCPAddr, error) {
	addr, err := net.ResolveTCPAddr("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to parse addr '%s': %w", address, err)
	}

	if addr.IP == nil {
		addr.IP = net.ParseIP(string(defaultIP))
	}

	return addr, nil
}

// HandleSignals blocks until an interrupt or a termination signal is
// caught, runs the close callback and reports how the shutdown went
func HandleSignals(closeFn func() error, outputter command.OutputFormatter) error {
	signalCh := make(chan os.Signal, 4)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	sig := <-signalCh

	closeMessage := fmt.Sprintf("\n[SIGNAL] Caught signal: %v\n", sig)
	closeMessage += "Gracefully shutting down client...\n"

	outputter.SetCommandResult(&ClientCloseResult{
		Message: closeMessage,
	})
	outputter.WriteOutput()

	// Call the server close callback
	gracefulCh := make(chan struct{})

	var closeErr error

	go func() {
		defer close(gracefulCh)

		if closeFn != nil {
			closeErr = closeFn()
		}
	}()

	select {
	case <-signalCh:
		return errors.New("shutdown by signal channel")
	case <-gracefulCh:
		return closeErr
	}
}

// FormatList takes a list of strings and formats them using the columnize library
func FormatList(in []string) string {
	columnConf := columnize.DefaultConfig()
	columnConf.Empty = "<none>"

	return columnize.Format(in, columnConf)
}

// FormatKV takes a set of strings and formats them into properly
// aligned k = v pairs
func FormatKV(in []string) string {
	columnConf := columnize.DefaultConfig()
	columnConf.Empty = "<none>"
	columnConf.Glue = " = "

	return columnize.Format(in, columnConf)
}
