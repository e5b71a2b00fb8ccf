package main

import (
	"fmt"
	"strconv"

	"nipaputil/internal/models"
	"nipaputil/internal/nipap"

	"github.com/spf13/cobra"
)

var (
	vrfCmd = &cobra.Command{
		Use:   "vrf",
		Short: "Manage VRFs",
	}

	vrfAddCmd = &cobra.Command{
		Use:   "add <name> <rt>",
		Short: "Create a VRF",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dialNipap(cmd.Context())
			if err != nil {
				return err
			}
			desc, _ := cmd.Flags().GetString("description")
			tags, _ := cmd.Flags().GetStringSlice("tag")
			v, err := c.AddVRF(args[0], args[1], desc, tags)
			if err != nil {
				return err
			}
			return printJSON(cmd, v)
		},
	}

	vrfFindCmd = &cobra.Command{
		Use:   "find <property> <value>",
		Short: "Find a VRF by exact property match (rt, name, description)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dialNipap(cmd.Context())
			if err != nil {
				return err
			}
			v, err := c.FindVRF(args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd, v)
		},
	}

	vrfSearchCmd = &cobra.Command{
		Use:   "search <rt>",
		Short: "Wildcard search of VRFs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dialNipap(cmd.Context())
			if err != nil {
				return err
			}
			vrfs, err := c.SearchVRF(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, vrfs)
		},
	}

	vrfListCmd = &cobra.Command{
		Use:     "ls [name]",
		Aliases: []string{"list"},
		Short:   "List VRFs",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dialNipap(cmd.Context())
			if err != nil {
				return err
			}
			vrfs, err := c.ListVRFs(optArg(args))
			if err != nil {
				return err
			}
			return printJSON(cmd, vrfs)
		},
	}

	vrfDeleteCmd = &cobra.Command{
		Use:     "rm",
		Aliases: []string{"delete"},
		Short:   "Delete a VRF by --rt or --name",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dialNipap(cmd.Context())
			if err != nil {
				return err
			}
			rt, _ := cmd.Flags().GetString("rt")
			name, _ := cmd.Flags().GetString("name")
			v, err := c.DeleteVRF(rt, name)
			if err != nil {
				return err
			}
			return printJSON(cmd, v)
		},
	}

	prefixCmd = &cobra.Command{
		Use:   "prefix",
		Short: "Manage prefixes",
	}

	prefixFindCmd = &cobra.Command{
		Use:   "find <rt> <prefix>",
		Short: "Find a prefix inside a VRF",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dialNipap(cmd.Context())
			if err != nil {
				return err
			}
			p, err := c.FindPrefix(args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd, p)
		},
	}

	prefixFreeCmd = &cobra.Command{
		Use:   "free <rt> <from-prefix> <length>",
		Short: "Show the next free prefix without reserving it",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			length, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid length %q", args[2])
			}
			c, err := dialNipap(cmd.Context())
			if err != nil {
				return err
			}
			free, err := c.FindFreePrefix(args[0], args[1], length)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), free)
			return err
		},
	}

	prefixAddCmd = &cobra.Command{
		Use:   "add <rt> <prefix>",
		Short: "Add a prefix to a VRF",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dialNipap(cmd.Context())
			if err != nil {
				return err
			}
			typ, status, desc := prefixFlags(cmd)
			tags, _ := cmd.Flags().GetStringSlice("tag")
			p, err := c.AddPrefixToVRF(args[0], nipap.PrefixSpec{
				Prefix:      args[1],
				Type:        typ,
				Status:      status,
				Description: desc,
				Tags:        tags,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, p)
		},
	}

	prefixReserveCmd = &cobra.Command{
		Use:   "reserve <rt> <from-prefix> <length>",
		Short: "Find the next free prefix and reserve it",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			length, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid length %q", args[2])
			}
			c, err := dialNipap(cmd.Context())
			if err != nil {
				return err
			}
			typ, status, desc := prefixFlags(cmd)
			var p *models.Prefix
			if site, _ := cmd.Flags().GetString("site"); site != "" {
				tags, _ := cmd.Flags().GetStringSlice("tag")
				p, err = c.ReserveAddress(site, args[0], args[1], length, typ, status, desc, tags)
			} else {
				p, err = c.FindAndReservePrefix(args[0], args[1], length, typ, desc, status)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd, p)
		},
	}

	prefixListCmd = &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List all prefixes",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dialNipap(cmd.Context())
			if err != nil {
				return err
			}
			ps, err := c.GetPrefixes("")
			if err != nil {
				return err
			}
			return printJSON(cmd, ps)
		},
	}

	poolCmd = &cobra.Command{
		Use:   "pool",
		Short: "Manage pools",
	}

	poolAddCmd = &cobra.Command{
		Use:   "add <name> <ipv4-default-length>",
		Short: "Create a pool",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			length, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid length %q", args[1])
			}
			c, err := dialNipap(cmd.Context())
			if err != nil {
				return err
			}
			desc, _ := cmd.Flags().GetString("description")
			typ, _ := cmd.Flags().GetString("type")
			p, err := c.AddPool(args[0], desc, models.PrefixType(typ), length)
			if err != nil {
				return err
			}
			return printJSON(cmd, p)
		},
	}

	poolListCmd = &cobra.Command{
		Use:     "ls [name]",
		Aliases: []string{"list"},
		Short:   "List pools",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dialNipap(cmd.Context())
			if err != nil {
				return err
			}
			pools, err := c.GetPools(optArg(args))
			if err != nil {
				return err
			}
			return printJSON(cmd, pools)
		},
	}

	poolDeleteCmd = &cobra.Command{
		Use:     "rm <name>",
		Aliases: []string{"delete"},
		Short:   "Delete pools by name",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := dialNipap(cmd.Context())
			if err != nil {
				return err
			}
			return c.DeletePool(args[0])
		},
	}
)

func init() {
	vrfAddCmd.Flags().String("description", "", "VRF description")
	vrfAddCmd.Flags().StringSlice("tag", nil, "VRF tag (repeatable)")
	vrfDeleteCmd.Flags().String("rt", "", "Route target of the VRF")
	vrfDeleteCmd.Flags().String("name", "", "Name of the VRF (used when --rt is empty)")
	vrfCmd.AddCommand(vrfAddCmd, vrfFindCmd, vrfSearchCmd, vrfListCmd, vrfDeleteCmd)

	for _, c := range []*cobra.Command{prefixAddCmd, prefixReserveCmd} {
		c.Flags().String("type", string(models.PrefixAssignment), "Prefix type: reservation, assignment or host")
		c.Flags().String("status", string(models.StatusAssigned), "Prefix status: assigned or reserved")
		c.Flags().String("description", "", "Prefix description")
		c.Flags().StringSlice("tag", nil, "Prefix tag (repeatable)")
	}
	prefixReserveCmd.Flags().String("site", "", "Site id; when set the parent prefix is added to the VRF first")
	prefixCmd.AddCommand(prefixFindCmd, prefixFreeCmd, prefixAddCmd, prefixReserveCmd, prefixListCmd)

	poolAddCmd.Flags().String("description", "", "Pool description")
	poolAddCmd.Flags().String("type", string(models.PrefixAssignment), "Default prefix type")
	poolCmd.AddCommand(poolAddCmd, poolListCmd, poolDeleteCmd)
}

func prefixFlags(cmd *cobra.Command) (models.PrefixType, models.PrefixStatus, string) {
	typ, _ := cmd.Flags().GetString("type")
	status, _ := cmd.Flags().GetString("status")
	desc, _ := cmd.Flags().GetString("description")
	return models.PrefixType(typ), models.PrefixStatus(status), desc
}

func optArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
