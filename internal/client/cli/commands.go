package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/rentkeeper/internal/client/services"
	"github.com/dmitrijs2005/rentkeeper/internal/common"
)

var errUsage = errors.New("usage")

func usage(s string) error {
	return fmt.Errorf("%w: %s", errUsage, s)
}

func parseEntity(typeArg, idArg string) (common.EntityType, int64, error) {
	et, err := common.ParseEntityType(typeArg)
	if err != nil {
		return "", 0, err
	}
	id, err := strconv.ParseInt(idArg, 10, 64)
	if err != nil || id <= 0 {
		return "", 0, fmt.Errorf("%w: entity id %q", common.ErrorIncorrectMetadata, idArg)
	}
	return et, id, nil
}

func parseFileID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: file id %q", common.ErrorIncorrectMetadata, s)
	}
	return id, nil
}

// buildRequest parses "<entityType> <entityId> <category> <path> [documentType]".
func (a *App) buildRequest(args []string) (services.UploadRequest, error) {
	et, id, err := parseEntity(args[0], args[1])
	if err != nil {
		return services.UploadRequest{}, err
	}
	cat, err := common.ParseCategory(args[2])
	if err != nil {
		return services.UploadRequest{}, err
	}
	var docArg string
	if len(args) > 4 {
		docArg = args[4]
	}
	doc, err := common.ParseDocumentType(docArg)
	if err != nil {
		return services.UploadRequest{}, err
	}
	if err := common.CheckSlot(et, cat, doc); err != nil {
		return services.UploadRequest{}, err
	}

	file, err := a.loadFile(args[3])
	if err != nil {
		return services.UploadRequest{}, err
	}

	return services.UploadRequest{
		EntityType:   et,
		EntityID:     id,
		Category:     cat,
		DocumentType: doc,
		File:         file,
		OnProgress:   progressPrinter(a.out, file.Name),
	}, nil
}

func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) < 4 || len(args) > 5 {
		return usage("upload <entityType> <entityId> <category> <path> [documentType]")
	}
	req, err := a.buildRequest(args)
	if err != nil {
		return err
	}

	rec, err := a.uploads.Upload(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Uploaded:")
	printRecord(a.out, rec)
	return nil
}

func (a *App) Replace(ctx context.Context, args []string) error {
	if len(args) < 5 || len(args) > 6 {
		return usage("replace <entityType> <entityId> <category> <path> <oldFileId> [documentType]")
	}
	oldID, err := parseFileID(args[4])
	if err != nil {
		return err
	}
	reqArgs := append([]string{}, args[:4]...)
	if len(args) == 6 {
		reqArgs = append(reqArgs, args[5])
	}
	req, err := a.buildRequest(reqArgs)
	if err != nil {
		return err
	}

	rec, err := a.replace.Replace(ctx, req, oldID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Replaced file #%d with:\n", oldID)
	printRecord(a.out, rec)
	return nil
}

func (a *App) List(ctx context.Context, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return usage("list <entityType> <entityId> [category]")
	}
	et, id, err := parseEntity(args[0], args[1])
	if err != nil {
		return err
	}
	var cat common.FileCategory
	if len(args) == 3 {
		if cat, err = common.ParseCategory(args[2]); err != nil {
			return err
		}
	}

	set, err := a.files.List(ctx, et, id, cat)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s %d: %d file(s), %s\n", set.EntityType, set.EntityID, set.TotalCount, humanSize(set.TotalSizeBytes))
	for i := range set.Files {
		printRecord(a.out, &set.Files[i])
	}
	return nil
}

func (a *App) Latest(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return usage("latest <entityType> <entityId> <category>")
	}
	et, id, err := parseEntity(args[0], args[1])
	if err != nil {
		return err
	}
	cat, err := common.ParseCategory(args[2])
	if err != nil {
		return err
	}

	rec, err := a.files.Latest(ctx, et, id, cat)
	if err != nil {
		return err
	}
	if rec == nil {
		fmt.Fprintln(a.out, "No file uploaded yet.")
		return nil
	}
	printRecord(a.out, rec)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("delete <fileId>")
	}
	id, err := parseFileID(args[0])
	if err != nil {
		return err
	}
	if !Confirm(a.reader, fmt.Sprintf("Delete file #%d?", id), a.out) {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}

	if err := a.files.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted file #%d.\n", id)
	return nil
}
