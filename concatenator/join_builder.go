package concatenator

import (
	"cutter/command"
)

// JoinBuilder builds the ffmpeg concat demuxer command.
type JoinBuilder struct {
	listPath   string
	outputPath string
}

// NewJoinBuilder creates a builder reading the list file at listPath.
func NewJoinBuilder(listPath, outputPath string) *JoinBuilder {
	return &JoinBuilder{listPath: listPath, outputPath: outputPath}
}

// BuildArgs copies every stream of every listed segment without re-encoding.
func (j *JoinBuilder) BuildArgs() []string {
	return []string{
		"-f", "concat",
		"-safe", "0", // absolute paths in the list
		"-i", j.listPath,
		"-c", "copy",
		"-map", "0",
		j.outputPath,
	}
}

// DryRun returns the command string without executing.
func (j *JoinBuilder) DryRun() (string, error) {
	return j.preview(), nil
}

func (j *JoinBuilder) preview() string {
	return command.Preview(j.BuildArgs())
}

// GetTaskType returns the task type identifier
func (j *JoinBuilder) GetTaskType() command.TaskType {
	return command.TaskTypeJoin
}

// GetInputPath returns the list file path
func (j *JoinBuilder) GetInputPath() string {
	return j.listPath
}

// GetOutputPath returns the output file path
func (j *JoinBuilder) GetOutputPath() string {
	return j.outputPath
}
