package main

import (
	"fmt"
	"strconv"

	"nipaputil/internal/models"

	"github.com/spf13/cobra"
)

var (
	vlanCmd = &cobra.Command{
		Use:   "vlan",
		Short: "Manage rows of the psb_vlan table",
	}

	vlanInsertCmd = &cobra.Command{
		Use:   "insert <vlanid> <porttype>",
		Short: "Insert a VLAN row",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := vlanArg(args[0])
			if err != nil {
				return err
			}
			s, closeDB, err := openStore()
			if err != nil {
				return err
			}
			defer closeDB()
			site, _ := cmd.Flags().GetString("site")
			cug, _ := cmd.Flags().GetString("cug")
			ent, _ := cmd.Flags().GetString("enterprise")
			rec := models.VlanRecord{VlanID: id, SiteID: site, CUG: cug, EnterpriseName: ent, PortType: args[1]}
			if err := s.Insert(cmd.Context(), rec); err != nil {
				return err
			}
			return printJSON(cmd, rec)
		},
	}

	vlanQueryCmd = &cobra.Command{
		Use:   "query <vlanid> <porttype>",
		Short: "Show VLAN rows for a vlan id and port type",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := vlanArg(args[0])
			if err != nil {
				return err
			}
			s, closeDB, err := openStore()
			if err != nil {
				return err
			}
			defer closeDB()
			rows, err := s.QueryByIDPort(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd, rows)
		},
	}

	vlanDeleteCmd = &cobra.Command{
		Use:     "rm <vlanid> <porttype>",
		Aliases: []string{"delete"},
		Short:   "Delete a VLAN row",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := vlanArg(args[0])
			if err != nil {
				return err
			}
			s, closeDB, err := openStore()
			if err != nil {
				return err
			}
			defer closeDB()
			return s.Delete(cmd.Context(), id, args[1])
		},
	}
)

func init() {
	vlanInsertCmd.Flags().String("site", "", "Site id")
	vlanInsertCmd.Flags().String("cug", "", "Closed user group")
	vlanInsertCmd.Flags().String("enterprise", "", "Enterprise name")
	vlanCmd.AddCommand(vlanInsertCmd, vlanQueryCmd, vlanDeleteCmd)
}

func vlanArg(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid vlan id %q", s)
	}
	return id, nil
}
