package main

import (
	"encoding/json"
	"fmt"
	stdio "io"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"
	"github.com/weberc2/blockfs/pkg/block"
	"github.com/weberc2/blockfs/pkg/filesystem"
	"github.com/weberc2/blockfs/pkg/httpapi"
	"github.com/weberc2/blockfs/pkg/log"
	. "github.com/weberc2/blockfs/pkg/types"
	pz "github.com/weberc2/httpeasy"
)

func main() {
	app := cli.App{
		Name:        appName,
		Description: "manage blockfs volumes",
		Commands: []*cli.Command{{
			Name:        "mkfs",
			Aliases:     []string{"format"},
			Description: "lay out an empty filesystem on the configured device",
			Action: withConfig(func(c *Config, ctx *cli.Context) error {
				device, err := openDevice(c, true)
				if err != nil {
					return err
				}
				defer device.Close()
				sb, err := filesystem.Format(
					device,
					filesystem.FormatParams{BlockCount: c.BlockCount},
				)
				if err != nil {
					return err
				}
				return printJSON(sb)
			}),
		}, {
			Name:        "ls",
			Aliases:     []string{"list"},
			Usage:       "ls [PATH]",
			Description: "list a directory (defaults to the root)",
			Action: withFileSystem(func(
				fs *filesystem.FileSystem,
				ctx *cli.Context,
			) error {
				path := ctx.Args().First()
				if path == "" {
					path = "/"
				}
				info, err := fs.LookupPath(path)
				if err != nil {
					return err
				}
				if !info.IsDir() {
					fmt.Printf("%d\t%s\t%s\n", info.Ino, info.Mode, path)
					return nil
				}
				entries, err := fs.List(info.Ino)
				if err != nil {
					return err
				}
				for _, entry := range entries {
					fmt.Printf("%d\t%s\t%s\n", entry.Ino, entry.FileType, entry.Name)
				}
				return nil
			}),
		}, {
			Name:        "stat",
			Usage:       "stat [PATH]",
			Description: "print an inode, or filesystem and device stats",
			Action: withDevice(func(
				_ *Config,
				fs *filesystem.FileSystem,
				device *block.CountingDevice,
				ctx *cli.Context,
			) error {
				if path := ctx.Args().First(); path != "" {
					info, err := fs.LookupPath(path)
					if err != nil {
						return err
					}
					return printJSON(info)
				}
				return printJSON(struct {
					Filesystem filesystem.Statfs `json:"filesystem"`
					Device     block.Stats       `json:"device"`
				}{fs.Statfs(), device.Stats()})
			}),
		}, {
			Name:        "mkdir",
			Usage:       "mkdir PATH",
			Description: "create a directory",
			Flags:       []cli.Flag{modeFlag("0755")},
			Action:      withFileSystem(create(true)),
		}, {
			Name:        "touch",
			Usage:       "touch PATH",
			Description: "create an empty file",
			Flags:       []cli.Flag{modeFlag("0644")},
			Action:      withFileSystem(create(false)),
		}, {
			Name:        "write",
			Usage:       "write PATH",
			Description: "write to a file from --data or stdin",
			Flags: []cli.Flag{
				&cli.Int64Flag{
					Name:  "offset",
					Usage: "byte offset within the file's block",
				},
				&cli.StringFlag{
					Name:  "data",
					Usage: "the data to write; read from stdin if unset",
				},
			},
			Action: withFileSystem(func(
				fs *filesystem.FileSystem,
				ctx *cli.Context,
			) error {
				info, err := fs.LookupPath(ctx.Args().First())
				if err != nil {
					return err
				}
				data := []byte(ctx.String("data"))
				if !ctx.IsSet("data") {
					if data, err = stdio.ReadAll(os.Stdin); err != nil {
						return fmt.Errorf("reading stdin: %w", err)
					}
				}
				_, err = fs.Write(info.Ino, Byte(ctx.Int64("offset")), data)
				return err
			}),
		}, {
			Name:        "cat",
			Usage:       "cat PATH",
			Description: "print a file's contents",
			Flags: []cli.Flag{
				&cli.Int64Flag{Name: "offset"},
				&cli.Int64Flag{
					Name:  "length",
					Value: int64(BlockSize),
				},
			},
			Action: withFileSystem(func(
				fs *filesystem.FileSystem,
				ctx *cli.Context,
			) error {
				info, err := fs.LookupPath(ctx.Args().First())
				if err != nil {
					return err
				}
				data, err := fs.Read(
					info.Ino,
					Byte(ctx.Int64("offset")),
					Byte(ctx.Int64("length")),
				)
				if err != nil {
					return err
				}
				_, err = os.Stdout.Write(data)
				return err
			}),
		}, {
			Name:        "serve",
			Description: "serve the filesystem over HTTP",
			Action: withDevice(func(
				c *Config,
				fs *filesystem.FileSystem,
				_ *block.CountingDevice,
				ctx *cli.Context,
			) error {
				service := httpapi.Service{FileSystem: fs}
				log.FromContext(ctx.Context).Info("listening", "addr", c.Addr)
				return http.ListenAndServe(
					c.Addr,
					pz.Register(pz.JSONLog(os.Stderr), service.Routes()...),
				)
			}),
		}},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("blockfs failed", "err", err)
		os.Exit(1)
	}
}

func modeFlag(def string) cli.Flag {
	return &cli.StringFlag{
		Name:  "mode",
		Usage: "octal permission bits",
		Value: def,
	}
}

func create(dir bool) func(*filesystem.FileSystem, *cli.Context) error {
	return func(fs *filesystem.FileSystem, ctx *cli.Context) error {
		parentPath, name, err := filesystem.SplitPath(ctx.Args().First())
		if err != nil {
			return err
		}
		mode, err := strconv.ParseUint(ctx.String("mode"), 8, 32)
		if err != nil {
			return fmt.Errorf("parsing mode `%s`: %w", ctx.String("mode"), err)
		}
		parent, err := fs.LookupPath(parentPath)
		if err != nil {
			return err
		}

		var info InodeInfo
		if dir {
			info, err = fs.CreateDirectory(parent.Ino, name, Mode(mode))
		} else {
			info, err = fs.CreateFile(parent.Ino, name, Mode(mode))
		}
		if err != nil {
			return err
		}
		return printJSON(info)
	}
}

func withConfig(f func(*Config, *cli.Context) error) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		c, err := LoadConfig()
		if err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return err
		}
		logger, err := log.New(os.Stderr, c.LogLevel, c.LogFormat)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		ctx.Context = log.Context(ctx.Context, logger)
		return f(c, ctx)
	}
}

func withDevice(
	f func(
		*Config,
		*filesystem.FileSystem,
		*block.CountingDevice,
		*cli.Context,
	) error,
) cli.ActionFunc {
	return withConfig(func(c *Config, ctx *cli.Context) error {
		device, err := openDevice(c, false)
		if err != nil {
			return err
		}
		fs, err := filesystem.Mount(device, filesystem.Params{
			Logger: log.FromContext(ctx.Context),
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := fs.Close(); err != nil {
				log.FromContext(ctx.Context).Error(
					"closing filesystem",
					"err",
					err,
				)
			}
		}()
		return f(c, fs, device, ctx)
	})
}

func withFileSystem(
	f func(*filesystem.FileSystem, *cli.Context) error,
) cli.ActionFunc {
	return withDevice(func(
		_ *Config,
		fs *filesystem.FileSystem,
		_ *block.CountingDevice,
		ctx *cli.Context,
	) error {
		return f(fs, ctx)
	})
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling output: %w", err)
	}
	fmt.Printf("%s\n", data)
	return nil
}
