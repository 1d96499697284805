package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"biome/internal/app"
	"biome/internal/biome"
	"biome/internal/config"
	"biome/internal/model"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates a BiomeApp. The caller must defer
// app.Close(). operation identifies the CLI command being run.
func newApp(operation string) (*app.BiomeApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewBiomeApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

// readPassphrase prompts on the terminal without echo. Falls back to a
// plain line read when stdin is not a terminal (tests, pipes).
func readPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	if term.IsTerminal(int(syscall.Stdin)) {
		b, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading passphrase: %w", err)
		}
		return string(b), nil
	}
	var line string
	if _, err := fmt.Fscanln(os.Stdin, &line); err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return line, nil
}

var rootCmd = &cobra.Command{
	Use:   "biome",
	Short: "Bioimage analysis project organizer",
}

// config command

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		installID := uuid.New().String()
		cfg := config.NewConfig(installID, defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Install ID: %s\n", installID)
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Install ID: %s\n", cfg.InstallID)
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Database:   %s (%s)\n", cfg.Database.Type, cfg.Database.DataDir)
		return nil
	},
}

// project command

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

// projectFieldsFromFlags builds an update map from the flags that were
// explicitly set, so untouched fields never enter the diff.
func projectFieldsFromFlags(cmd *cobra.Command) map[string]any {
	fields := make(map[string]any)
	strFlags := map[string]string{
		"name": "name", "description": "description", "status": "status",
		"software": "software", "path": "project_path", "start-date": "start_date",
		"image-types": "image_types", "sample-type": "sample_type",
		"magnification": "objective_magnification", "analysis-goal": "analysis_goal",
		"output-type": "output_type",
	}
	for flag, field := range strFlags {
		if cmd.Flags().Changed(flag) {
			v, _ := cmd.Flags().GetString(flag)
			fields[field] = v
		}
	}
	if cmd.Flags().Changed("time-spent") {
		v, _ := cmd.Flags().GetInt("time-spent")
		fields["time_spent_minutes"] = v
	}
	if cmd.Flags().Changed("user-id") {
		v, _ := cmd.Flags().GetInt64("user-id")
		fields["user_id"] = v
	}
	return fields
}

func addProjectFieldFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "Project name")
	cmd.Flags().String("description", "", "Project description")
	cmd.Flags().String("status", "", "Project status")
	cmd.Flags().String("software", "", "Analysis software")
	cmd.Flags().String("path", "", "Project folder path")
	cmd.Flags().String("start-date", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().Int("time-spent", 0, "Time spent in minutes")
	cmd.Flags().Int64("user-id", 0, "Responsible user id")
	cmd.Flags().String("image-types", "", "Imaging techniques (JSON array)")
	cmd.Flags().String("sample-type", "", "Sample types (JSON array)")
	cmd.Flags().String("magnification", "", "Objective magnification")
	cmd.Flags().String("analysis-goal", "", "Analysis goals (JSON array)")
	cmd.Flags().String("output-type", "", "Output/result type")
}

var projectCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a project",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ProjectCreate")
		if err != nil {
			return err
		}
		defer a.Close()

		fields := projectFieldsFromFlags(cmd)
		p := &model.Project{}
		if v, ok := fields["name"].(string); ok {
			p.Name = v
		}
		if v, ok := fields["description"].(string); ok {
			p.Description = v
		}
		if v, ok := fields["status"].(string); ok {
			p.Status = v
		}
		if v, ok := fields["project_path"].(string); ok && v != "" {
			p.ProjectPath = &v
		}
		if v, ok := fields["start_date"].(string); ok {
			p.StartDate = v
		}
		if v, ok := fields["software"].(string); ok && v != "" {
			p.Software = &v
		}
		if v, ok := fields["time_spent_minutes"].(int); ok {
			p.TimeSpentMinutes = v
		}
		if v, ok := fields["user_id"].(int64); ok {
			p.UserID = &v
		}
		for flag, dst := range map[string]**string{
			"image_types":             &p.ImageTypes,
			"sample_type":             &p.SampleType,
			"objective_magnification": &p.ObjectiveMagnification,
			"analysis_goal":           &p.AnalysisGoal,
			"output_type":             &p.OutputType,
		} {
			if v, ok := fields[flag].(string); ok && v != "" {
				*dst = &v
			}
		}

		created, err := a.Service.CreateProject(cmd.Context(), p)
		if err != nil {
			return err
		}
		fmt.Printf("Created project #%d: %s (%s)\n", created.ID, created.Name, created.Status)
		return nil
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ProjectList")
		if err != nil {
			return err
		}
		defer a.Close()

		projects, err := a.Service.ListProjects(cmd.Context())
		if err != nil {
			return err
		}
		if len(projects) == 0 {
			fmt.Println("No projects found.")
			return nil
		}
		for _, p := range projects {
			path := "-"
			if p.ProjectPath != nil {
				path = *p.ProjectPath
			}
			fmt.Printf("#%-4d %-12s %-30s %s\n", p.ID, p.Status, p.Name, path)
		}
		return nil
	},
}

var projectShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show project details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		a, err := newApp("ProjectShow")
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.Service.GetProject(cmd.Context(), id)
		if err != nil {
			return err
		}

		fmt.Printf("Project #%d\n", p.ID)
		fmt.Printf("Name:        %s\n", p.Name)
		fmt.Printf("Status:      %s\n", p.Status)
		fmt.Printf("Description: %s\n", p.Description)
		fmt.Printf("Start Date:  %s\n", p.StartDate)
		printOpt := func(label string, v *string) {
			if v != nil {
				fmt.Printf("%s %s\n", label, *v)
			}
		}
		printOpt("Software:   ", p.Software)
		printOpt("Path:       ", p.ProjectPath)
		printOpt("User:       ", p.UserName)
		printOpt("Group:      ", p.GroupName)
		assigned, err := a.Service.ListAssignedUsers(cmd.Context(), id)
		if err != nil {
			return err
		}
		if len(assigned) > 0 {
			names := make([]string, len(assigned))
			for i, u := range assigned {
				names[i] = u.Name
			}
			fmt.Printf("Assigned:    %s\n", strings.Join(names, ", "))
		}
		fmt.Printf("Time Spent:  %d minutes\n", p.TimeSpentMinutes)
		fmt.Printf("Folder:      created=%v\n", p.FolderCreated)
		if p.ReadmeLastUpdated != nil {
			fmt.Printf("README:      updated %s\n", p.ReadmeLastUpdated.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

var projectUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Update project fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		a, err := newApp("ProjectUpdate")
		if err != nil {
			return err
		}
		defer a.Close()

		fields := projectFieldsFromFlags(cmd)
		if len(fields) == 0 {
			fmt.Println("No fields to update.")
			return nil
		}

		updated, err := a.Service.UpdateProject(cmd.Context(), id, fields)
		if err != nil {
			return err
		}
		fmt.Printf("Updated project #%d: %s\n", updated.ID, updated.Name)
		return nil
	},
}

var projectAssignUsersCmd = &cobra.Command{
	Use:   "assign-users ID [USER_ID...]",
	Short: "Replace the project's assigned users",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		userIDs := make([]int64, 0, len(args)-1)
		for _, arg := range args[1:] {
			uid, err := parseID(arg)
			if err != nil {
				return err
			}
			userIDs = append(userIDs, uid)
		}

		a, err := newApp("ProjectAssignUsers")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Service.AssignUsers(cmd.Context(), id, userIDs); err != nil {
			return err
		}
		fmt.Printf("Assigned %d user(s) to project #%d\n", len(userIDs), id)
		return nil
	},
}

// user and group commands

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Register a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		groupID, _ := cmd.Flags().GetInt64("group-id")

		a, err := newApp("UserAdd")
		if err != nil {
			return err
		}
		defer a.Close()

		u := &model.User{Name: args[0]}
		if email != "" {
			u.Email = &email
		}
		if cmd.Flags().Changed("group-id") {
			u.GroupID = &groupID
		}
		created, err := a.Service.CreateUser(cmd.Context(), u)
		if err != nil {
			return err
		}
		fmt.Printf("Created user #%d: %s\n", created.ID, created.Name)
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("UserList")
		if err != nil {
			return err
		}
		defer a.Close()

		users, err := a.Service.ListUsers(cmd.Context())
		if err != nil {
			return err
		}
		if len(users) == 0 {
			fmt.Println("No users found.")
			return nil
		}
		for _, u := range users {
			email := "-"
			if u.Email != nil {
				email = *u.Email
			}
			fmt.Printf("#%-4d %-25s %s\n", u.ID, u.Name, email)
		}
		return nil
	},
}

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Manage research groups",
}

var groupAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Register a research group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("description")

		a, err := newApp("GroupAdd")
		if err != nil {
			return err
		}
		defer a.Close()

		g := &model.Group{Name: args[0]}
		if description != "" {
			g.Description = &description
		}
		created, err := a.Service.CreateGroup(cmd.Context(), g)
		if err != nil {
			return err
		}
		fmt.Printf("Created group #%d: %s\n", created.ID, created.Name)
		return nil
	},
}

var groupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List research groups",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("GroupList")
		if err != nil {
			return err
		}
		defer a.Close()

		groups, err := a.Service.ListGroups(cmd.Context())
		if err != nil {
			return err
		}
		if len(groups) == 0 {
			fmt.Println("No groups found.")
			return nil
		}
		for _, g := range groups {
			fmt.Printf("#%-4d %s\n", g.ID, g.Name)
		}
		return nil
	},
}

// structure command

var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Manage project folder structures",
}

var structureCreateCmd = &cobra.Command{
	Use:   "create ID [PATH]",
	Short: "Create the canonical folder structure",
	Long: `Create the canonical folder structure for a project. When PATH is
omitted, a folder named DATE_GROUP_USER_SOFTWARE is created under the
current directory.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		a, err := newApp("StructureCreate")
		if err != nil {
			return err
		}
		defer a.Close()

		var root string
		if len(args) > 1 {
			root, err = filepath.Abs(args[1])
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
		} else {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting current directory: %w", err)
			}
			name, err := a.Service.SuggestFolderName(cmd.Context(), id)
			if err != nil {
				return err
			}
			root = filepath.Join(cwd, name)
		}

		if err := a.Service.InitializeProjectFolder(cmd.Context(), id, root, force); err != nil {
			return err
		}
		fmt.Printf("Created project structure at %s\n", root)
		return nil
	},
}

var structureScanCmd = &cobra.Command{
	Use:   "scan ID",
	Short: "Scan a project tree against the canonical structure",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		a, err := newApp("StructureScan")
		if err != nil {
			return err
		}
		defer a.Close()

		scan, err := a.Service.ScanProject(cmd.Context(), id)
		if err != nil {
			return err
		}

		fmt.Printf("Scanned %s\n", scan.Root)
		fmt.Printf("Files: %d  Size: %d bytes\n", scan.TotalFiles, scan.TotalBytes)
		fmt.Printf("Structure valid: %v  Effectively empty: %v\n", scan.StructureValid, scan.EffectivelyEmpty)
		if len(scan.MissingFolders) > 0 {
			fmt.Printf("Missing folders: %s\n", strings.Join(scan.MissingFolders, ", "))
		}
		if len(scan.ExtraTopLevel) > 0 {
			fmt.Printf("Extra folders: %s\n", strings.Join(scan.ExtraTopLevel, ", "))
		}
		return nil
	},
}

var structureExportCmd = &cobra.Command{
	Use:   "export ID",
	Short: "Export the project tree as a ZIP archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		a, err := newApp("StructureExport")
		if err != nil {
			return err
		}
		defer a.Close()

		path, err := a.ExportProjectStructure(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Printf("Exported project to %s\n", path)
		return nil
	},
}

// readme command

var readmeCmd = &cobra.Command{
	Use:   "readme",
	Short: "Manage project README documents",
}

var readmeUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Regenerate the full README from project state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		a, err := newApp("ReadmeUpdate")
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.Service.RegenerateReadme(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Printf("Regenerated %s for project #%d\n", res.File, id)
		return nil
	},
}

var readmeResourcesCmd = &cobra.Command{
	Use:   "resources ID",
	Short: "Refresh only the resources section of the README",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		a, err := newApp("ReadmeResources")
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.Service.UpdateReadmeResources(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Printf("Updated resources section in %s for project #%d\n", res.File, id)
		return nil
	},
}

// resources command

var resourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "Manage project resource files",
}

var resourcesListCmd = &cobra.Command{
	Use:   "list ID",
	Short: "List project resources",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		a, err := newApp("ResourcesList")
		if err != nil {
			return err
		}
		defer a.Close()

		resources, err := a.Service.ListResources(cmd.Context(), id)
		if err != nil {
			return err
		}
		if len(resources) == 0 {
			fmt.Println("No resources found.")
			return nil
		}
		for _, r := range resources {
			caption := ""
			if r.Caption != nil {
				caption = "  " + *r.Caption
			}
			fmt.Printf("#%-4d %-8s %-40s %d bytes%s\n", r.ID, r.Kind, r.Filename, r.Size, caption)
		}
		return nil
	},
}

var resourcesUploadCmd = &cobra.Command{
	Use:   "upload ID FILE...",
	Short: "Upload files into the project's reference folder",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		caption, _ := cmd.Flags().GetString("caption")

		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		a, err := newApp("ResourcesUpload")
		if err != nil {
			return err
		}
		defer a.Close()

		var uploads []biome.ResourceUpload
		for _, file := range args[1:] {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading %s: %w", file, err)
			}
			mimeType := mime.TypeByExtension(filepath.Ext(file))
			if i := strings.Index(mimeType, ";"); i >= 0 {
				mimeType = mimeType[:i]
			}
			up := biome.ResourceUpload{
				OriginalName: filepath.Base(file),
				MimeType:     mimeType,
				Data:         data,
			}
			if caption != "" {
				c := caption
				up.Caption = &c
			}
			uploads = append(uploads, up)
		}

		results, err := a.Service.UploadResources(cmd.Context(), id, uploads)
		if err != nil {
			return err
		}
		for _, res := range results {
			if res.Err != nil {
				fmt.Printf("FAILED  %s: %v\n", res.OriginalName, res.Err)
				continue
			}
			fmt.Printf("stored  %s as %s\n", res.OriginalName, res.Resource.Filename)
		}
		return nil
	},
}

var resourcesValidateCmd = &cobra.Command{
	Use:   "validate ID",
	Short: "Check which resource files exist on disk",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		a, err := newApp("ResourcesValidate")
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.Service.ValidateResources(cmd.Context(), id)
		if err != nil {
			return err
		}
		for _, v := range result.Valid {
			fmt.Printf("ok       %s\n", v.Resource.Filename)
		}
		for _, m := range result.Missing {
			fmt.Printf("missing  %s\n", m.Resource.Filename)
		}
		fmt.Printf("%d valid, %d missing\n", len(result.Valid), len(result.Missing))
		return nil
	},
}

var resourcesSearchCmd = &cobra.Command{
	Use:   "search ID PATH",
	Short: "Search a directory for missing resource files",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		a, err := newApp("ResourcesSearch")
		if err != nil {
			return err
		}
		defer a.Close()

		matches, err := a.Service.SearchResources(cmd.Context(), id, args[1])
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			fmt.Println("No matches found.")
			return nil
		}
		for _, m := range matches {
			fmt.Printf("#%-4d %-7s %s\n", m.Resource.ID, m.Confidence, m.FoundPath)
		}
		return nil
	},
}

var resourcesRelinkCmd = &cobra.Command{
	Use:   "relink ID RESOURCE_ID FOUND_PATH",
	Short: "Restore a missing resource from a found file",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		move, _ := cmd.Flags().GetBool("move")

		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		resourceID, err := parseID(args[1])
		if err != nil {
			return err
		}
		foundPath, err := filepath.Abs(args[2])
		if err != nil {
			return fmt.Errorf("resolving path: %w", err)
		}

		a, err := newApp("ResourcesRelink")
		if err != nil {
			return err
		}
		defer a.Close()

		results, err := a.Service.RelinkResources(cmd.Context(), id, []biome.RelinkRequest{
			{ResourceID: resourceID, FoundPath: foundPath, Move: move},
		})
		if err != nil {
			return err
		}
		for _, res := range results {
			if res.Err != nil {
				return res.Err
			}
			fmt.Printf("Relinked resource #%d to %s\n", res.ResourceID, res.Path)
		}
		return nil
	},
}

var resourcesCaptionCmd = &cobra.Command{
	Use:   "caption ID RESOURCE_ID [TEXT]",
	Short: "Set or clear a resource caption",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		resourceID, err := parseID(args[1])
		if err != nil {
			return err
		}
		caption := ""
		if len(args) > 2 {
			caption = args[2]
		}

		a, err := newApp("ResourcesCaption")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Service.SetResourceCaption(cmd.Context(), id, resourceID, caption); err != nil {
			return err
		}
		fmt.Printf("Updated caption for resource #%d\n", resourceID)
		return nil
	},
}

var resourcesDeleteCmd = &cobra.Command{
	Use:   "delete ID RESOURCE_ID",
	Short: "Delete a resource and its file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		resourceID, err := parseID(args[1])
		if err != nil {
			return err
		}

		a, err := newApp("ResourcesDelete")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Service.DeleteResource(cmd.Context(), id, resourceID); err != nil {
			return err
		}
		fmt.Printf("Deleted resource #%d\n", resourceID)
		return nil
	},
}

// journal command

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Manage project journal entries",
}

var journalAddCmd = &cobra.Command{
	Use:   "add ID TEXT",
	Short: "Add a journal entry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		a, err := newApp("JournalAdd")
		if err != nil {
			return err
		}
		defer a.Close()

		entry, err := a.Service.AddJournalEntry(cmd.Context(), id, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Added journal entry #%d\n", entry.ID)
		return nil
	},
}

var journalEditCmd = &cobra.Command{
	Use:   "edit ID ENTRY_ID TEXT",
	Short: "Edit a journal entry",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		editedBy, _ := cmd.Flags().GetString("by")

		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		entryID, err := parseID(args[1])
		if err != nil {
			return err
		}

		a, err := newApp("JournalEdit")
		if err != nil {
			return err
		}
		defer a.Close()

		var by *string
		if editedBy != "" {
			by = &editedBy
		}
		if err := a.Service.EditJournalEntry(cmd.Context(), id, entryID, args[2], by); err != nil {
			return err
		}
		fmt.Printf("Edited journal entry #%d\n", entryID)
		return nil
	},
}

var journalDeleteCmd = &cobra.Command{
	Use:   "delete ID ENTRY_ID",
	Short: "Delete a journal entry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		entryID, err := parseID(args[1])
		if err != nil {
			return err
		}

		a, err := newApp("JournalDelete")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Service.DeleteJournalEntry(cmd.Context(), id, entryID); err != nil {
			return err
		}
		fmt.Printf("Deleted journal entry #%d\n", entryID)
		return nil
	},
}

var journalListCmd = &cobra.Command{
	Use:   "list ID",
	Short: "List journal entries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		a, err := newApp("JournalList")
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := a.Service.ListJournalEntries(cmd.Context(), id)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No journal entries.")
			return nil
		}
		for _, e := range entries {
			edited := ""
			if e.EditedAt != nil {
				edited = "  [edited]"
			}
			fmt.Printf("#%-4d %s%s\n%s\n\n", e.ID, e.EntryDate.Format("2006-01-02 15:04:05"), edited, e.EntryText)
		}
		return nil
	},
}

// activity command

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "View and export the activity log",
}

var activityListCmd = &cobra.Command{
	Use:   "list ID",
	Short: "List a project's activities",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		a, err := newApp("ActivityList")
		if err != nil {
			return err
		}
		defer a.Close()

		activities, err := a.Service.ListActivities(cmd.Context(), id)
		if err != nil {
			return err
		}
		if len(activities) == 0 {
			fmt.Println("No activities recorded.")
			return nil
		}
		for _, act := range activities {
			fmt.Printf("%s  %-22s %s\n", act.ActivityDate.Format("2006-01-02 15:04:05"), act.ActivityType, act.Details)
		}
		return nil
	},
}

var activityExportCmd = &cobra.Command{
	Use:   "export [FILE]",
	Short: "Export all activities as CSV",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ActivityExport")
		if err != nil {
			return err
		}
		defer a.Close()

		out := os.Stdout
		if len(args) > 0 {
			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("creating export file: %w", err)
			}
			defer f.Close()
			out = f
		}
		return a.Service.ExportActivitiesCSV(cmd.Context(), out)
	},
}

// db command

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the metadata database",
}

var dbBackupCmd = &cobra.Command{
	Use:   "backup DEST",
	Short: "Snapshot the database to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		encrypt, _ := cmd.Flags().GetBool("encrypt")

		a, err := newApp("DBBackup")
		if err != nil {
			return err
		}
		defer a.Close()

		dest, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("resolving path: %w", err)
		}
		written, err := a.BackupDatabase(dest, encrypt)
		if err != nil {
			return err
		}
		fmt.Printf("Database backed up to %s\n", written)
		return nil
	},
}

var dbRestoreCmd = &cobra.Command{
	Use:   "restore SRC",
	Short: "Replace the database with a backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("DBRestore")
		if err != nil {
			return err
		}
		defer a.Close()

		src, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("resolving path: %w", err)
		}

		passphrase := ""
		if strings.HasSuffix(src, ".age") {
			passphrase, err = readPassphrase("Passphrase: ")
			if err != nil {
				return err
			}
		}

		if err := a.RestoreDatabase(src, passphrase); err != nil {
			return err
		}
		fmt.Println("Database restored.")
		return nil
	},
}

// keys command

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the backup encryption key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("KeysInit")
		if err != nil {
			return err
		}
		defer a.Close()

		passphrase, err := readPassphrase("New passphrase: ")
		if err != nil {
			return err
		}
		confirm, err := readPassphrase("Confirm passphrase: ")
		if err != nil {
			return err
		}
		if passphrase != confirm {
			return fmt.Errorf("passphrases do not match")
		}

		if err := a.SetupKeys(passphrase); err != nil {
			return err
		}
		fmt.Println("Encryption keys generated.")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	addProjectFieldFlags(projectCreateCmd)
	addProjectFieldFlags(projectUpdateCmd)
	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectShowCmd)
	projectCmd.AddCommand(projectUpdateCmd)
	projectCmd.AddCommand(projectAssignUsersCmd)

	userAddCmd.Flags().String("email", "", "User email address")
	userAddCmd.Flags().Int64("group-id", 0, "Research group id")
	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userListCmd)

	groupAddCmd.Flags().String("description", "", "Group description")
	groupCmd.AddCommand(groupAddCmd)
	groupCmd.AddCommand(groupListCmd)

	structureCreateCmd.Flags().Bool("force", false, "Overwrite descriptions in a non-empty tree")
	structureCmd.AddCommand(structureCreateCmd)
	structureCmd.AddCommand(structureScanCmd)
	structureCmd.AddCommand(structureExportCmd)

	readmeCmd.AddCommand(readmeUpdateCmd)
	readmeCmd.AddCommand(readmeResourcesCmd)

	resourcesUploadCmd.Flags().String("caption", "", "Caption applied to each uploaded file")
	resourcesRelinkCmd.Flags().Bool("move", false, "Move the found file instead of copying")
	resourcesCmd.AddCommand(resourcesListCmd)
	resourcesCmd.AddCommand(resourcesUploadCmd)
	resourcesCmd.AddCommand(resourcesValidateCmd)
	resourcesCmd.AddCommand(resourcesSearchCmd)
	resourcesCmd.AddCommand(resourcesRelinkCmd)
	resourcesCmd.AddCommand(resourcesCaptionCmd)
	resourcesCmd.AddCommand(resourcesDeleteCmd)

	journalEditCmd.Flags().String("by", "", "Name recorded as the editor")
	journalCmd.AddCommand(journalAddCmd)
	journalCmd.AddCommand(journalEditCmd)
	journalCmd.AddCommand(journalDeleteCmd)
	journalCmd.AddCommand(journalListCmd)

	activityCmd.AddCommand(activityListCmd)
	activityCmd.AddCommand(activityExportCmd)

	dbBackupCmd.Flags().Bool("encrypt", false, "Encrypt the backup with the configured public key")
	dbCmd.AddCommand(dbBackupCmd)
	dbCmd.AddCommand(dbRestoreCmd)

	keysCmd.AddCommand(keysInitCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(groupCmd)
	rootCmd.AddCommand(structureCmd)
	rootCmd.AddCommand(readmeCmd)
	rootCmd.AddCommand(resourcesCmd)
	rootCmd.AddCommand(journalCmd)
	rootCmd.AddCommand(activityCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(keysCmd)
}
