package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/danmuck/vhalctl/internal/monitor"
	"github.com/danmuck/vhalctl/internal/protocol"
	"github.com/danmuck/vhalctl/internal/protocol/session"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func (c *cli) newConfigsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configs",
		Short: "List every property and its value type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, closeConn, err := c.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer closeConn()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PROP\tVALUE TYPE")
			for _, e := range sess.Registry().List() {
				fmt.Fprintf(w, "0x%08x\t%s\n", e.Prop, e.ValueType)
			}
			return w.Flush()
		},
	}
}

func (c *cli) newGetConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get-config <prop>",
		Short: "Request the config of one property",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prop, err := parseProp(args[0])
			if err != nil {
				return err
			}
			sess, closeConn, err := c.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer closeConn()

			if err := sess.GetConfig(prop); err != nil {
				return err
			}
			resp, err := awaitResponse(sess, protocol.GetConfigResp)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), resp.Configs)
		},
	}
}

func (c *cli) newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <prop> <area>",
		Short: "Read the current value of a property",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			prop, err := parseProp(args[0])
			if err != nil {
				return err
			}
			area, err := parseArea(args[1])
			if err != nil {
				return err
			}
			sess, closeConn, err := c.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer closeConn()

			if err := sess.GetProperty(prop, area); err != nil {
				return err
			}
			resp, err := awaitResponse(sess, protocol.GetPropertyResp)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), monitor.NewEvent(resp, time.Now()))
		},
	}
}

func (c *cli) newSetCmd() *cobra.Command {
	var asHex, asJSON bool
	cmd := &cobra.Command{
		Use:   "set <prop> <area> <value>",
		Short: "Write a property value, encoded by its registered type",
		Long: `Write a property value. The value is parsed according to the type the
property declared during bootstrap:

  STRING, INT64_VEC     text (INT64_VEC text is packed into 8-byte chunks)
  BYTES                 text, or --hex
  BOOLEAN               true/false or an integer
  INT32, INT64          decimal or 0x hex
  FLOAT                 decimal
  INT32_VEC, FLOAT_VEC  comma separated list
  MIXED                 --json {"string":..,"bytes":"<hex>","int32s":[..],"int64s":[..],"floats":[..]}

Examples:
  vhalctl set 0x11400400 0 42
  vhalctl set 0x11510000 0 "hello"
  vhalctl set 0x11700000 0 --hex deadbeef`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			prop, err := parseProp(args[0])
			if err != nil {
				return err
			}
			area, err := parseArea(args[1])
			if err != nil {
				return err
			}
			sess, closeConn, err := c.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer closeConn()

			t, err := sess.Registry().Lookup(prop)
			if err != nil {
				return err
			}
			format := formatText
			switch {
			case asHex:
				format = formatHex
			case asJSON:
				format = formatJSON
			}
			raw, err := parseRaw(t, args[2], format)
			if err != nil {
				return err
			}
			if err := sess.SetProperty(prop, area, raw); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "set 0x%08x area %d (%s)\n", prop, area, t)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asHex, "hex", false, "value is hex encoded bytes")
	cmd.Flags().BoolVar(&asJSON, "json", false, "value is JSON")
	cmd.MarkFlagsMutuallyExclusive("hex", "json")
	return cmd
}

func (c *cli) newMonitorCmd() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Log every message the service sends and serve them over HTTP",
		Long: `Bootstrap a session, then log every message received until the
connection closes or the process is interrupted. Unless --listen is empty,
an HTTP API serves /health, /metrics, /registry and /events.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, closeConn, err := c.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer closeConn()
			addr := c.cfg.MonitorAddr
			if cmd.Flags().Changed("listen") {
				addr = listen
			}
			m := monitor.New(sess, monitor.Options{CorsOrigins: c.cfg.CorsOrigins})
			return m.Run(cmd.Context(), addr, closerFunc(closeConn))
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address, overrides monitor_addr; empty disables")
	return cmd
}

// awaitResponse reads until a message of kind want arrives. Unsolicited
// messages in between, such as async property pushes, are logged and dropped.
func awaitResponse(sess *session.Session, want protocol.MsgType) (*protocol.InjectionMessage, error) {
	for {
		msg, err := sess.Receive()
		if err != nil {
			return nil, err
		}
		if msg.Type == want {
			return msg, nil
		}
		log.Debug().
			Str("msg_type", msg.Type.String()).
			Str("want", want.String()).
			Msg("skipping unsolicited message")
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
