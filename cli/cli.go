package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	daemon "github.com/coreos/go-systemd/daemon"
	revip "github.com/corpix/revip"
	spew "github.com/davecgh/go-spew/spew"
	cli "github.com/urfave/cli/v2"
	di "go.uber.org/dig"

	"git.backbone/corpix/greeter/pkg/client"
	"git.backbone/corpix/greeter/pkg/config"
	"git.backbone/corpix/greeter/pkg/errors"
	"git.backbone/corpix/greeter/pkg/greeter"
	"git.backbone/corpix/greeter/pkg/log"
	"git.backbone/corpix/greeter/pkg/meta"
	"git.backbone/corpix/greeter/pkg/telemetry"
)

var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr

	Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Aliases: []string{"l"},
			Usage:   "logging level (trace, debug, info, warn, error)",
		},
		&cli.StringSliceFlag{
			Name:    "config",
			Aliases: []string{"c"},
			EnvVars: []string{config.EnvironPrefix + "_CONFIG"},
			Usage:   "path to application configuration file/files (separate multiple files with comma)",
		},

		//

		&cli.DurationFlag{
			Name:  "duration",
			Usage: "exit after duration",
		},
	}
	clientFlags = []cli.Flag{
		&cli.StringFlag{
			Name:    "url",
			Aliases: []string{"u"},
			Usage:   "greeter service url, overrides client.url",
		},
		&cli.StringFlag{
			Name:    "encoding",
			Aliases: []string{"e"},
			Usage:   "transport encoding (json, msgpack), overrides client.encoding",
		},
		&cli.BoolFlag{
			Name:  "compress",
			Usage: "use zstd content coding",
		},
		&cli.BoolFlag{
			Name:    "dump",
			Aliases: []string{"d"},
			Usage:   "dump decoded replies instead of printing json",
		},
	}
	payloadFlags = []cli.Flag{
		&cli.StringFlag{
			Name:  "label",
			Value: "foo",
			Usage: "payload label",
		},
		&cli.StringFlag{
			Name:  "codes",
			Value: "98,97,114",
			Usage: "payload character codes (separate multiple codes with comma)",
		},
	}
	Commands = []*cli.Command{
		{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Configuration tools",
			Subcommands: []*cli.Command{
				{
					Name:    "show-default",
					Aliases: []string{"sd"},
					Usage:   "Show default configuration",
					Action:  ConfigShowDefaultAction,
				},
				{
					Name:    "show",
					Aliases: []string{"s"},
					Usage:   "Show loaded configuration",
					Action:  ConfigShowAction,
				},
				{
					Name:    "validate",
					Aliases: []string{"v"},
					Usage:   "Validate configuration and exit",
					Action:  ConfigValidateAction,
				},
				{
					Name:      "push",
					Aliases:   []string{"p"},
					Usage:     "Push configuration to specified destination",
					Action:    ConfigPushAction,
					ArgsUsage: "<destination>[,...]",
				},
			},
		},
		{
			Name:    "serve",
			Aliases: []string{"s"},
			Usage:   "Run greeter service",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "bind-addr",
					Aliases: []string{"b"},
					EnvVars: []string{"BIND_ADDR"},
					Usage:   "address the server should bind to, overrides server.addr (default: " + greeter.DefaultAddr + ")",
				},
			},
			Action: ServeAction,
		},
		{
			Name:    "client",
			Aliases: []string{"cl"},
			Usage:   "Greeter service client",
			Subcommands: []*cli.Command{
				{
					Name:   "fetch",
					Usage:  "Fetch fixed payload",
					Flags:  clientFlags,
					Action: ClientFetchAction,
				},
				{
					Name:   "echo",
					Usage:  "Send payload and print decoded echo",
					Flags:  append(append([]cli.Flag{}, clientFlags...), payloadFlags...),
					Action: ClientEchoAction,
				},
				{
					Name:      "greet",
					Usage:     "Greet by name",
					Flags:     clientFlags,
					Action:    ClientGreetAction,
					ArgsUsage: "<name>",
				},
				{
					Name:  "reflect",
					Usage: "Send payload to a reflecting endpoint and check it comes back unchanged",
					Flags: append(append([]cli.Flag{
						&cli.StringFlag{
							Name:  "target",
							Value: "https://httpbin.org/anything",
							Usage: "reflecting endpoint url",
						},
					}, clientFlags...), payloadFlags...),
					Action: ClientReflectAction,
				},
			},
		},
	}

	c *di.Container
)

type doneCh = chan struct{}

func Before(ctx *cli.Context) error {
	var err error

	c = di.New()

	//

	err = c.Provide(func() doneCh { return make(doneCh) })
	if err != nil {
		return err
	}

	err = c.Provide(func() *cli.Context { return ctx })
	if err != nil {
		return err
	}

	err = c.Provide(func() *spew.ConfigState {
		return &spew.ConfigState{
			DisableMethods:          false,
			DisableCapacities:       true,
			DisablePointerAddresses: true,
			Indent:                  "  ",
			SortKeys:                true,
			SpewKeys:                false,
		}
	})
	if err != nil {
		return err
	}

	err = c.Provide(func() *json.Encoder {
		enc := json.NewEncoder(Stdout)
		enc.SetIndent("", "  ")
		return enc
	})
	if err != nil {
		return err
	}

	err = c.Provide(func(ctx *cli.Context) (*config.Config, error) {
		return config.Load(
			ctx.StringSlice("config"),
			config.InitPostprocessors...,
		)
	})
	if err != nil {
		return err
	}

	err = c.Provide(func(ctx *cli.Context, c *config.Config) (log.Logger, error) {
		lc := *c.Log
		level := ctx.String("log-level")
		if level != "" {
			lc.Level = level
		}

		return log.Create(lc)
	})
	if err != nil {
		return err
	}

	err = c.Provide(func() *telemetry.Registry { return telemetry.DefaultRegistry })
	if err != nil {
		return err
	}

	//

	err = c.Provide(func(
		c *config.Config,
		l log.Logger,
		r *telemetry.Registry,
		done doneCh,
		running *sync.WaitGroup,
		errc chan error,
		_ chan os.Signal,
	) (*telemetry.Server, error) {
		if !c.Telemetry.Enable {
			return nil, nil
		}

		lr, err := net.Listen("tcp", c.Telemetry.Addr)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to bind telemetry server to %q", c.Telemetry.Addr)
		}
		t, err := telemetry.New(*c.Telemetry, l, r, lr)
		if err != nil {
			return nil, err
		}

		running.Add(1)

		go func() {
			errc <- errors.Wrap(
				t.ListenAndServe(),
				"failed while listen and serve telemetry server",
			)
		}()
		go func() {
			defer running.Done()

			<-done
			_ = shutdown(l, c.ShutdownGraceTime, t.Shutdown)
		}()

		return t, nil
	})
	if err != nil {
		return err
	}

	//

	err = c.Provide(func() *sync.WaitGroup { return &sync.WaitGroup{} })
	if err != nil {
		return err
	}

	// every serving component may report once
	err = c.Provide(func() chan error { return make(chan error, 2) })
	if err != nil {
		return err
	}

	err = c.Provide(func() chan os.Signal {
		sig := make(chan os.Signal, 1)
		signal.Notify(
			sig,
			syscall.SIGQUIT,
			syscall.SIGTERM,
			syscall.SIGINT,
			syscall.SIGUSR1,
			syscall.SIGUSR2,
			syscall.SIGHUP,
		)
		return sig
	})
	if err != nil {
		return err
	}

	//

	duration := ctx.Duration("duration")
	if duration == 0 {
		err = c.Provide(func(ctx *cli.Context) context.Context {
			return context.Background()
		})
	} else {
		err = c.Provide(func(ctx *cli.Context) context.Context {
			c, cancel := context.WithTimeout(context.Background(), duration)
			go func() {
				<-c.Done()
				cancel()
			}()
			return c
		})
	}

	return err
}

func shutdown(l log.Logger, grace time.Duration, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	err := fn(ctx)
	if err != nil {
		l.Warn().
			Err(err).
			Dur("graceTime", grace).
			Msg("graceful shutdown timed out")
	}
	return err
}

//

func ConfigShowDefaultAction(ctx *cli.Context) error {
	c, err := config.Default()
	if err != nil {
		return err
	}

	write := revip.ToWriter(Stdout, config.Marshaler)

	return write(c)
}

func ConfigShowAction(ctx *cli.Context) error {
	return c.Invoke(func(c *config.Config) error {
		write := revip.ToWriter(Stdout, config.Marshaler)

		return write(c)
	})
}

func ConfigValidateAction(ctx *cli.Context) error {
	configs := ctx.StringSlice("config")
	c, err := config.Load(configs, config.LocalPostprocessors...)
	if err != nil {
		return err
	}

	err = config.Validate(c)
	if err != nil {
		return err
	}

	l, err := log.Create(*c.Log)
	if err != nil {
		return err
	}
	l.Info().
		Strs("configs", configs).
		Msg("configuration validation is ok")

	return nil
}

func ConfigPushAction(ctx *cli.Context) error {
	return c.Invoke(func(l log.Logger) error {
		configs := ctx.StringSlice("config")
		c, err := config.Load(
			configs,
			config.LocalPostprocessors...,
		)
		if err != nil {
			return err
		}

		args := ctx.Args().Slice()
		if len(args) < 1 {
			return errors.New("subcommand requires an argument, example: ./config.out.yml")
		}

		destinations := args
		for _, destination := range destinations {
			push, err := revip.ToURL(destination, config.Marshaler)
			if err != nil {
				return err
			}

			err = push(c)
			if err != nil {
				return err
			}
		}

		l.Info().
			Strs("configs", configs).
			Strs("destinations", destinations).
			Msg("configuration pushed")

		return nil
	})
}

//

func ServeAction(ctx *cli.Context) error {
	var drainErr error // written before running.Done

	err := c.Provide(func(
		cfg *config.Config,
		l log.Logger,
		r *telemetry.Registry,
		done doneCh,
		running *sync.WaitGroup,
		errc chan error,
		_ chan os.Signal, // notify before readiness is reported
	) (*greeter.Server, error) {
		sc := *cfg.Server
		if addr := ctx.String("bind-addr"); addr != "" {
			sc.Addr = addr
		}
		err := sc.Validate()
		if err != nil {
			return nil, err
		}

		lr, err := net.Listen("tcp", sc.Addr)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to bind greeter server to %q", sc.Addr)
		}
		s, err := greeter.New(sc, l, r, lr)
		if err != nil {
			return nil, err
		}

		running.Add(1)

		go func() {
			errc <- errors.Wrap(
				s.ListenAndServe(),
				"failed while listen and serve greeter server",
			)
		}()
		go func() {
			defer running.Done()

			<-done
			l.Info().Msg("draining in-flight requests")
			drainErr = shutdown(l, cfg.ShutdownGraceTime, s.Shutdown)
		}()

		//

		notified, err := daemon.SdNotify(false, daemon.SdNotifyReady)
		if err != nil {
			return nil, err
		}
		if notified {
			l.Debug().Msg("indicated readiness to systemd")
		}

		return s, nil
	})
	if err != nil {
		return err
	}

	//

	components := c.String()
	_ = c.Invoke(func(l log.Logger) {
		l.Trace().Msgf(
			"component graph: %s",
			strings.TrimSpace(components),
		)
	})

	return c.Invoke(func(
		ctx context.Context,
		l log.Logger,
		t *telemetry.Server,
		s *greeter.Server,
		running *sync.WaitGroup,
		done doneCh,
		errc chan error,
		sig chan os.Signal,
	) error {
		l.Info().Str("addr", s.Addr()).Msg("serving")

	loop:
		for {
			select {
			case <-ctx.Done():
				break loop
			case err := <-errc:
				if err != nil {
					close(done)
					running.Wait()
					return err
				}
			case si := <-sig:
				l.Info().Str("signal", si.String()).Msg("received signal")
				switch si {
				case syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
					break loop
				case syscall.SIGUSR1, syscall.SIGUSR2, syscall.SIGHUP:
				}
			}
		}

		close(done)
		running.Wait() // wait for other running components to finish

		if drainErr != nil {
			return errors.Wrap(drainErr, "failed to drain greeter server")
		}

		l.Info().Msg("stopped")

		return nil
	})
}

//

func newClient(ctx *cli.Context, cfg *config.Config, l log.Logger) (*client.Client, error) {
	cc := *cfg.Client
	if url := ctx.String("url"); url != "" {
		cc.URL = url
	}
	if encoding := ctx.String("encoding"); encoding != "" {
		cc.Encoding = encoding
	}
	if ctx.Bool("compress") {
		cc.Compress = true
	}

	return client.New(cc, l)
}

func payloadFromFlags(ctx *cli.Context) (greeter.Payload, error) {
	p := greeter.Payload{Label: ctx.String("label")}

	codes := strings.Split(ctx.String("codes"), ",")
	p.Codes = make([]uint32, 0, len(codes))
	for k, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		n, err := strconv.ParseUint(code, 10, 32)
		if err != nil {
			return p, errors.Wrapf(err, "failed to parse code %q at index %d", code, k)
		}
		p.Codes = append(p.Codes, uint32(n))
	}

	return p, nil
}

func ClientFetchAction(ctx *cli.Context) error {
	return c.Invoke(func(
		cfg *config.Config,
		l log.Logger,
		enc *json.Encoder,
		dumper *spew.ConfigState,
	) error {
		cl, err := newClient(ctx, cfg, l)
		if err != nil {
			return err
		}

		p, err := cl.Fetch(ctx.Context)
		if err != nil {
			return err
		}

		if ctx.Bool("dump") {
			dumper.Fdump(Stdout, p)
			return nil
		}
		return enc.Encode(p)
	})
}

func ClientEchoAction(ctx *cli.Context) error {
	return c.Invoke(func(cfg *config.Config, l log.Logger) error {
		cl, err := newClient(ctx, cfg, l)
		if err != nil {
			return err
		}
		p, err := payloadFromFlags(ctx)
		if err != nil {
			return err
		}

		text, err := cl.Echo(ctx.Context, p)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(Stdout, text)
		return err
	})
}

func ClientGreetAction(ctx *cli.Context) error {
	return c.Invoke(func(cfg *config.Config, l log.Logger) error {
		if ctx.Args().Len() != 1 {
			return errors.New("subcommand requires exactly one argument, example: Bob")
		}

		cl, err := newClient(ctx, cfg, l)
		if err != nil {
			return err
		}

		text, err := cl.Greet(ctx.Context, ctx.Args().First())
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(Stdout, text)
		return err
	})
}

func ClientReflectAction(ctx *cli.Context) error {
	return c.Invoke(func(
		cfg *config.Config,
		l log.Logger,
		enc *json.Encoder,
		dumper *spew.ConfigState,
	) error {
		cl, err := newClient(ctx, cfg, l)
		if err != nil {
			return err
		}
		p, err := payloadFromFlags(ctx)
		if err != nil {
			return err
		}

		reflected, err := cl.Reflect(ctx.Context, ctx.String("target"), p)
		if err != nil {
			return err
		}
		if dumper.Sdump(reflected) != dumper.Sdump(p) {
			return errors.Errorf(
				"reflected payload differs from sent payload:\n%s",
				dumper.Sdump(reflected),
			)
		}

		if ctx.Bool("dump") {
			dumper.Fdump(Stdout, reflected)
			return nil
		}
		return enc.Encode(reflected)
	})
}

//

func RootAction(ctx *cli.Context) error {
	return cli.ShowAppHelp(ctx)
}

//

func NewApp() *cli.App {
	app := &cli.App{}

	app.Name = meta.Name
	app.Usage = "payload greeter service and client"
	app.Before = Before
	app.Flags = Flags
	app.Action = RootAction
	app.Commands = Commands
	app.Version = meta.Version
	app.Writer = Stdout
	app.ErrWriter = Stderr

	return app
}

func Run() {
	err := NewApp().Run(os.Args)
	if err != nil {
		errors.Fatal(errors.Wrap(
			err, fmt.Sprintf(
				"pid: %d, ppid: %d",
				os.Getpid(), os.Getppid(),
			),
		))
	}
}
