/*
Package patch rewrites fixed-length byte spans inside binary files.

A Patch names a signature to search for, a delta from the match to the first
byte to overwrite, and the replacement bytes. Apply locates the signature,
overwrites the span in memory, and writes the image back without changing
the file length.

# Backups

Every target keeps a sibling backup at <path><suffix> (".bak" by default).
Apply runs, in order:

 1. If a backup exists it is moved back over the target.
 2. The target, now the original, is copied to the backup slot and the copy
    is verified against the target by SHA-256 digest.
 3. The target is patched in place.

Because step 1 always restores the pristine file, a second Apply produces the
same bytes as the first. The sequence is not atomic; a crash between steps can
leave the target and backup mismatched. Options.Atomic writes the patched image
to a temporary file and renames it into place, which closes the window for a
torn write-back but not for a stale backup.

# Errors

Scanner errors from package sig are wrapped, so callers can test with
errors.Is(err, sig.ErrPatternNotFound) or errors.Is(err, sig.ErrInvalidMask).
A mask length mismatch is reported before any file is touched.

# Example

	res, err := patch.Apply(`C:\Trainz\bin\trainz.exe`, patch.TrainzExe(), nil)
	if err != nil {
	    return err
	}
	fmt.Println(res)
*/
package patch
