package uscf

import (
	"path"
)

// Invocation describes how the scheduler starts the executable.
type Invocation struct {
	// CodeUUID references the executable.
	CodeUUID string `yaml:"code_uuid" json:"code_uuid"`
	// CmdlineParams is the full argument list, extras first.
	CmdlineParams []string `yaml:"cmdline_params" json:"cmdline_params"`
	// StdoutName is the file standard output is captured into.
	StdoutName string `yaml:"stdout_name" json:"stdout_name"`
}

// LocalCopy is one staged local file to upload into the remote working
// directory.
type LocalCopy struct {
	SourcePath string `yaml:"source_path" json:"source_path"`
	DestPath   string `yaml:"dest_path" json:"dest_path"`
}

// RemoteCopy is one directory to copy between locations on the remote
// computer before the run starts.
type RemoteCopy struct {
	// ComputerUUID is the host both paths live on.
	ComputerUUID string `yaml:"computer_uuid" json:"computer_uuid"`
	SourcePath   string `yaml:"source_path" json:"source_path"`
	DestPath     string `yaml:"dest_path" json:"dest_path"`
}

// TransferPlan lists the file movements around one scheduler run.
type TransferPlan struct {
	// Retrieve names the files to fetch back after the run.
	Retrieve []string `yaml:"retrieve" json:"retrieve"`
	// LocalCopy is always empty for uscf.x, the deck is uploaded with the
	// submission script. The list is kept so the plan has the shape the
	// scheduler collaborator expects.
	LocalCopy []LocalCopy `yaml:"local_copy" json:"local_copy"`
	// RemoteCopy stages the parent's output folder into the working
	// subfolder.
	RemoteCopy []RemoteCopy `yaml:"remote_copy" json:"remote_copy"`
}

// CalcInfo is the submission descriptor handed to the scheduler
// collaborator: how to invoke the code, which files to move, and which
// parser reads the results.
type CalcInfo struct {
	// UUID identifies the calculation being submitted.
	UUID string `yaml:"uuid" json:"uuid"`
	// ParserName selects the parser for the retrieved files.
	ParserName string       `yaml:"parser_name" json:"parser_name"`
	Invocation Invocation   `yaml:"invocation" json:"invocation"`
	Plan       TransferPlan `yaml:"plan" json:"plan"`
}

// newCalcInfo assembles the submission descriptor. extraArgs come from the
// CMDLINE setting and precede the fixed input-file flag.
func (c *Calculation) newCalcInfo(in Inputs, extraArgs []string, outSubfolder string) *CalcInfo {
	cmdline := make([]string, 0, len(extraArgs)+2)
	cmdline = append(cmdline, extraArgs...)
	cmdline = append(cmdline, "-in", InputFileName)

	return &CalcInfo{
		UUID:       c.id,
		ParserName: ParserName,
		Invocation: Invocation{
			CodeUUID:      in.Code.UUID,
			CmdlineParams: cmdline,
			StdoutName:    OutputFileName,
		},
		Plan: TransferPlan{
			Retrieve: []string{
				OutputFileName,
				Prefix + OutputChiSuffix,
				Prefix + OutputHubbardSuffix,
			},
			LocalCopy: []LocalCopy{},
			RemoteCopy: []RemoteCopy{{
				ComputerUUID: in.ParentFolder.Computer.UUID,
				SourcePath:   path.Join(in.ParentFolder.Path, outSubfolder),
				DestPath:     OutputSubfolder,
			}},
		},
	}
}
