package uscf

import (
	"context"
	"sort"

	"github.com/calcforge/uscfprep/internal/errors"
	"github.com/calcforge/uscfprep/internal/namelist"
	"github.com/calcforge/uscfprep/internal/nodes"
	"github.com/calcforge/uscfprep/internal/params"
	"github.com/calcforge/uscfprep/internal/provenance"
	"github.com/calcforge/uscfprep/internal/qpoints"
)

// Prepare validates the inputs, writes the input deck into stage and
// returns the submission descriptor. The sequence is fixed: required
// inputs, parent resolution, parameter normalization, reserved-key guard,
// plugin-key and mesh injection, settings consumption with its residual
// check, then serialization. Every validation runs before the deck file is
// opened, a failed Prepare leaves nothing behind.
func (c *Calculation) Prepare(ctx context.Context, stage *Stage, in Inputs) (*CalcInfo, error) {
	if in.Code.UUID == "" {
		return nil, errors.MissingInput("code")
	}
	if in.Parameters == nil {
		return nil, errors.MissingInput("parameters")
	}
	if in.Qpoints == nil {
		return nil, errors.MissingInput("qpoints")
	}
	if in.ParentFolder == nil {
		return nil, errors.MissingInput("parent_folder")
	}

	settings, err := params.UppercaseKeys(in.Settings, "settings")
	if err != nil {
		return nil, err
	}

	parent, err := provenance.SingleProducer(c.graph, in.ParentFolder)
	if err != nil {
		return nil, err
	}
	if parent.Kind() != nodes.KindPw {
		return nil, errors.TypeMismatch("parent calculation", string(nodes.KindPw), parent)
	}
	if parent.Computer().UUID != c.machine.UUID {
		return nil, errors.HostMismatch(c.machine.Name, parent.Computer().Name)
	}
	c.log.Debug(ctx, "resolved parent calculation",
		"parent", parent.UUID(),
		"computer", parent.Computer().Name,
	)

	outSubfolder, err := nodes.DefaultOutputFolder(parent)
	if err != nil {
		return nil, err
	}
	override, ok, err := popString(settings, SettingParentOutSubfolder)
	if err != nil {
		return nil, err
	}
	if ok {
		outSubfolder = override
	}

	tree, err := params.Normalize(in.Parameters)
	if err != nil {
		return nil, err
	}
	if err := params.CheckReserved(tree, BlockedKeywords); err != nil {
		return nil, err
	}
	if _, ok := tree[namelistMain]; !ok {
		return nil, errors.MissingInput(namelistMain + " namelist")
	}

	tree.Set(namelistMain, "outdir", OutputSubfolder)
	tree.Set(namelistMain, "prefix", Prefix)
	tree.Set(namelistMain, "iverbosity", 2)

	mesh, err := qpoints.Resolve(in.Qpoints)
	if err != nil {
		return nil, err
	}
	mesh.InjectInto(tree, namelistMain, [3]string{"nq1", "nq2", "nq3"})

	cmdline, err := popStringList(settings, SettingCmdline)
	if err != nil {
		return nil, err
	}
	if len(settings) > 0 {
		return nil, errors.UnrecognizedSettings(sortedKeys(settings))
	}

	rendered, err := namelist.RenderString(tree, CompulsoryNamelists)
	if err != nil {
		return nil, err
	}
	if err := stage.WriteFile(InputFileName, []byte(rendered)); err != nil {
		return nil, err
	}

	info := c.newCalcInfo(in, cmdline, outSubfolder)

	c.log.Info(ctx, "prepared input deck",
		"calculation", c.id,
		"file", stage.Path(InputFileName),
		"mesh", mesh.Counts,
		"retrieve", len(info.Plan.Retrieve),
	)
	return info, nil
}

// popString consumes key from settings. Missing keys are not an error.
func popString(settings map[string]any, key string) (string, bool, error) {
	raw, exists := settings[key]
	if !exists {
		return "", false, nil
	}
	delete(settings, key)

	value, ok := raw.(string)
	if !ok {
		return "", false, errors.TypeMismatch("settings."+key, "string", raw)
	}
	return value, true, nil
}

// popStringList consumes key from settings as a list of strings.
func popStringList(settings map[string]any, key string) ([]string, error) {
	raw, exists := settings[key]
	if !exists {
		return nil, nil
	}
	delete(settings, key)

	switch value := raw.(type) {
	case []string:
		return append([]string(nil), value...), nil
	case []any:
		result := make([]string, 0, len(value))
		for _, item := range value {
			element, ok := item.(string)
			if !ok {
				return nil, errors.TypeMismatch("settings."+key, "list of strings", item)
			}
			result = append(result, element)
		}
		return result, nil
	default:
		return nil, errors.TypeMismatch("settings."+key, "list of strings", raw)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
