package cmd

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/fmastery/admin-console/internal"
	"github.com/fmastery/admin-console/internal/core/datamodel"
	"github.com/fmastery/admin-console/internal/video"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	videosFlags listFlags
	videoForm   = video.NewForm()
	videoFile   string
)

var videosCmd = &cobra.Command{
	Use:   "videos",
	Short: "Training video catalog",
}

var videosListCmd = &cobra.Command{
	Use:   "list",
	Short: "List videos",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDependencies(cmd, func(ctx context.Context, d *Dependencies) error {
			if err := d.requireSession(); err != nil {
				return err
			}
			view, err := d.Videos.Videos.Query(ctx, videosFlags.query())
			printToasts(cmd.ErrOrStderr(), d.Toasts.Drain())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if printEmpty(out, view) {
				return nil
			}
			tw := newTable(out)
			row(tw, "ID", "TITLE", "TYPE", "LEVEL", "CATEGORY", "TAGS", "TIME", "XP", "UPLOADED")
			for _, r := range view.Rows {
				v := r.Item
				row(tw, v.ID.String(), orNA(v.Title), orNA(v.PracticeType), fmt.Sprint(v.Level),
					orNA(v.EssentialCategory), orNA(v.Tags), fmt.Sprint(v.VideoTime), fmt.Sprint(v.XpToBeGained), v.UploadedAt.Display())
			}
			return tw.Flush()
		})
	},
}

var videosAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a video; --file uploads a local file to object storage first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDependencies(cmd, func(ctx context.Context, d *Dependencies) error {
			if err := d.requireSession(); err != nil {
				return err
			}
			form := videoForm
			form.ID = ""
			if err := uploadVideoFile(ctx, d, &form); err != nil {
				return err
			}
			toast, err := d.Videos.Save(ctx, form)
			return reportMutation(cmd.OutOrStdout(), d.Toasts, toast, err)
		})
	},
}

var videosUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a video; only the given flags change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDependencies(cmd, func(ctx context.Context, d *Dependencies) error {
			if err := d.requireSession(); err != nil {
				return err
			}
			if err := d.Videos.Videos.Load(ctx); err != nil {
				d.Toasts.Drain()
				return err
			}
			id := datamodel.ID(args[0])
			var current *video.Video
			for _, v := range d.Videos.Videos.Items() {
				if v.ID == id {
					v := v
					current = &v
					break
				}
			}
			if current == nil {
				return internal.ErrRecordNotFound
			}

			form := video.EditForm(*current)
			overrideVideoForm(cmd.Flags(), &form)
			if err := uploadVideoFile(ctx, d, &form); err != nil {
				return err
			}
			toast, err := d.Videos.Save(ctx, form)
			return reportMutation(cmd.OutOrStdout(), d.Toasts, toast, err)
		})
	},
}

var videosDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDependencies(cmd, func(ctx context.Context, d *Dependencies) error {
			if err := d.requireSession(); err != nil {
				return err
			}
			toast, err := d.Videos.Delete(ctx, datamodel.ID(args[0]))
			return reportMutation(cmd.OutOrStdout(), d.Toasts, toast, err)
		})
	},
}

// uploadVideoFile puts --file in object storage and points the form at it.
func uploadVideoFile(ctx context.Context, d *Dependencies, form *video.Form) error {
	if videoFile == "" {
		return nil
	}
	f, err := os.Open(videoFile)
	if err != nil {
		return fmt.Errorf("failed to open video file: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat video file: %w", err)
	}

	url, err := d.Videos.UploadFile(ctx, filepath.Base(videoFile), f, info.Size(), mime.TypeByExtension(filepath.Ext(videoFile)))
	if err != nil {
		return err
	}
	form.URL = url
	return nil
}

// overrideVideoForm copies the flags the operator set onto form.
func overrideVideoForm(fs *pflag.FlagSet, form *video.Form) {
	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "title":
			form.Title = videoForm.Title
		case "description":
			form.Description = videoForm.Description
		case "url":
			form.URL = videoForm.URL
		case "practice-type":
			form.PracticeType = videoForm.PracticeType
		case "level":
			form.Level = videoForm.Level
		case "category":
			form.EssentialCategory = videoForm.EssentialCategory
		case "subcategory":
			form.EssentialSubCategory = videoForm.EssentialSubCategory
		case "tags":
			form.Tags = videoForm.Tags
		case "time":
			form.VideoTime = videoForm.VideoTime
		case "xp":
			form.XpToBeGained = videoForm.XpToBeGained
		case "xp-on-watch":
			form.XpToBeGainedOnWatch = videoForm.XpToBeGainedOnWatch
		}
	})
}

func registerVideoFormFlags(fs *pflag.FlagSet) {
	fs.StringVar(&videoForm.Title, "title", "", "video title")
	fs.StringVar(&videoForm.Description, "description", "", "video description")
	fs.StringVar(&videoForm.URL, "url", "", "video URL")
	fs.StringVar(&videoForm.PracticeType, "practice-type", video.PracticeDrill, "Drill or Essential")
	fs.IntVar(&videoForm.Level, "level", 1, "difficulty level")
	fs.StringVar(&videoForm.EssentialCategory, "category", "", "essential category")
	fs.StringVar(&videoForm.EssentialSubCategory, "subcategory", "", "essential subcategory")
	fs.StringVar(&videoForm.Tags, "tags", "", "comma separated tags")
	fs.IntVar(&videoForm.VideoTime, "time", 0, "length in minutes")
	fs.IntVar(&videoForm.XpToBeGained, "xp", 0, "xp for completing the practice")
	fs.IntVar(&videoForm.XpToBeGainedOnWatch, "xp-on-watch", 0, "xp for watching")
	fs.StringVar(&videoFile, "file", "", "local file to upload instead of --url")
}

func init() {
	videosFlags.register(videosListCmd.Flags())
	registerVideoFormFlags(videosAddCmd.Flags())
	registerVideoFormFlags(videosUpdateCmd.Flags())

	videosCmd.AddCommand(videosListCmd, videosAddCmd, videosUpdateCmd, videosDeleteCmd)
}
