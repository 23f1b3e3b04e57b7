// Package command provides the Command interface shared by the ffmpeg
// argument builders.
//
// Builders only assemble arguments. Running them is the job of an
// ffmpeg.Transcoder, which keeps process handling in one place.
package command

import "strings"

// TaskType represents the kind of ffmpeg invocation.
type TaskType string

const (
	TaskTypeEncode TaskType = "encode" // one retained range of the source
	TaskTypeJoin   TaskType = "join"   // concatenation of encoded segments
)

// Command represents an ffmpeg command that can be built or previewed.
//
// Example usage:
//
//	job := &models.EncodeJob{Sequence: 1, InputPath: "in.ts", Streams: models.StreamSelection{0, 1}, OutputPath: "in.001.ts"}
//	cmd := segment.NewEncodeBuilder(job, video.DefaultPolicy().CodecArgs("h264"))
//
//	// Preview the command
//	preview, _ := cmd.DryRun()
//
//	// Execute the command
//	err := transcoder.Run(ctx, cmd.BuildArgs(), onProgress)
type Command interface {
	// BuildArgs constructs the ffmpeg arguments, without the executable and
	// without the global flags the Transcoder adds.
	//
	// Example return value:
	//   ["-i", "in.ts", "-ss", "00:00:10.00", "-to", "00:00:30.00", "-c", "copy", "-map", "0:0", "in.001.ts"]
	BuildArgs() []string

	// DryRun returns the command as a string without executing it.
	// Returns an error if the command cannot be built.
	DryRun() (string, error)

	// GetTaskType returns the type of task.
	GetTaskType() TaskType

	// GetInputPath returns the primary input file path for this command.
	GetInputPath() string

	// GetOutputPath returns the output file path for this command.
	GetOutputPath() string
}

// Preview renders args as the shell line ffmpeg would be started with.
// Arguments containing whitespace are single-quoted.
func Preview(args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, "ffmpeg")
	for _, arg := range args {
		if arg == "" || strings.ContainsAny(arg, " \t'") {
			arg = "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
		}
		parts = append(parts, arg)
	}
	return strings.Join(parts, " ")
}
