package remote

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
)

// ApplyPatch applies a unified diff to original and returns the modified
// content. The second return is false when the patch produces no change:
// an empty diff, a diff with no hunks, or a patch that is already applied
// (detected by the reverse patch applying cleanly). Callers must treat a
// false return as success-without-effect, not as an error.
func ApplyPatch(original, diffText string) (string, bool, error) {
	if strings.TrimSpace(diffText) == "" {
		return original, false, nil
	}

	files, _, err := gitdiff.Parse(strings.NewReader(diffText))
	if err != nil {
		return "", false, fmt.Errorf("parse diff: %w", err)
	}
	if len(files) == 0 {
		return original, false, nil
	}
	file := files[0]

	var out bytes.Buffer
	if err := gitdiff.Apply(&out, strings.NewReader(original), file); err != nil {
		var conflict *gitdiff.Conflict
		if errors.As(err, &conflict) && alreadyApplied(original, file) {
			return original, false, nil
		}
		return "", false, fmt.Errorf("apply diff: %w", err)
	}

	modified := out.String()
	if modified == original {
		return original, false, nil
	}
	return modified, true, nil
}

// PatchTarget returns the path a unified diff applies to, taken from the
// patch header.
func PatchTarget(diffText string) (string, error) {
	files, _, err := gitdiff.Parse(strings.NewReader(diffText))
	if err != nil {
		return "", fmt.Errorf("parse diff: %w", err)
	}
	if len(files) == 0 {
		return "", fmt.Errorf("diff names no file")
	}
	if name := files[0].NewName; name != "" {
		return name, nil
	}
	return files[0].OldName, nil
}

// alreadyApplied reports whether content is the result of the patch having
// been applied before: the reverse of the patch applies cleanly to it.
func alreadyApplied(content string, file *gitdiff.File) bool {
	var out bytes.Buffer
	return gitdiff.Apply(&out, strings.NewReader(content), reversed(file)) == nil
}

// reversed builds the inverse of a parsed patch: additions become
// deletions, deletions become additions, and the old/new sides swap.
func reversed(file *gitdiff.File) *gitdiff.File {
	rev := &gitdiff.File{
		OldName:  file.NewName,
		NewName:  file.OldName,
		IsNew:    file.IsDelete,
		IsDelete: file.IsNew,
	}
	for _, frag := range file.TextFragments {
		rfrag := &gitdiff.TextFragment{
			Comment:         frag.Comment,
			OldPosition:     frag.NewPosition,
			OldLines:        frag.NewLines,
			NewPosition:     frag.OldPosition,
			NewLines:        frag.OldLines,
			LinesAdded:      frag.LinesDeleted,
			LinesDeleted:    frag.LinesAdded,
			LeadingContext:  frag.LeadingContext,
			TrailingContext: frag.TrailingContext,
		}
		for _, line := range frag.Lines {
			switch line.Op {
			case gitdiff.OpAdd:
				rfrag.Lines = append(rfrag.Lines, gitdiff.Line{Op: gitdiff.OpDelete, Line: line.Line})
			case gitdiff.OpDelete:
				rfrag.Lines = append(rfrag.Lines, gitdiff.Line{Op: gitdiff.OpAdd, Line: line.Line})
			default:
				rfrag.Lines = append(rfrag.Lines, line)
			}
		}
		rev.TextFragments = append(rev.TextFragments, rfrag)
	}
	return rev
}
