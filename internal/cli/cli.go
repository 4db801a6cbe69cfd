// Package cli implements the flowcli client commands over the HTTP API.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/grussorusso/stepflow/utils"
	"github.com/spf13/cobra"
)

// ServerConfig points the client at a remote stepflow server.
type ServerConfig struct {
	Host string
	Port int
}

var Server ServerConfig

var rootCmd = &cobra.Command{
	Use:   "flowcli",
	Short: "CLI utility for stepflow",
	Long:  `CLI utility to manage and invoke state machines on a stepflow server.`,
}

var machineName, definitionFile, inputJson, executionId string
var async bool

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Registers a state machine from a definition file",
	Run:   create,
}

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Deletes a registered state machine",
	Run:   deleteMachine,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists the registered state machines",
	Run:   list,
}

var invokeCmd = &cobra.Command{
	Use:   "invoke",
	Short: "Starts an execution of a state machine",
	Run:   invoke,
}

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Polls the result of an asynchronous execution",
	Run:   poll,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Shows the server status",
	Run:   status,
}

func Init() {
	rootCmd.PersistentFlags().StringVarP(&Server.Host, "host", "H", Server.Host, "remote stepflow host")
	rootCmd.PersistentFlags().IntVarP(&Server.Port, "port", "P", Server.Port, "remote stepflow port")

	rootCmd.AddCommand(createCmd)
	createCmd.Flags().StringVarP(&machineName, "machine", "m", "", "name of the machine")
	createCmd.Flags().StringVarP(&definitionFile, "definition", "d", "", "path of the definition file")

	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().StringVarP(&machineName, "machine", "m", "", "name of the machine")

	rootCmd.AddCommand(listCmd)

	rootCmd.AddCommand(invokeCmd)
	invokeCmd.Flags().StringVarP(&machineName, "machine", "m", "", "name of the machine")
	invokeCmd.Flags().StringVarP(&inputJson, "input", "i", "{}", "JSON input document")
	invokeCmd.Flags().BoolVarP(&async, "async", "a", false, "invoke asynchronously")

	rootCmd.AddCommand(pollCmd)
	pollCmd.Flags().StringVarP(&executionId, "execution", "e", "", "execution identifier")

	rootCmd.AddCommand(statusCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func serverUrl(path string) string {
	return fmt.Sprintf("http://%s:%d%s", Server.Host, Server.Port, path)
}

func create(cmd *cobra.Command, args []string) {
	if machineName == "" || definitionFile == "" {
		fmt.Println("machine name and definition file are required")
		os.Exit(1)
	}
	definition, err := os.ReadFile(definitionFile)
	if err != nil {
		fmt.Printf("could not read definition file: %v\n", err)
		os.Exit(1)
	}
	body, _ := json.Marshal(map[string]interface{}{
		"Name":       machineName,
		"Definition": json.RawMessage(definition),
	})
	resp, err := utils.PostJson(serverUrl("/create"), body)
	if err != nil {
		fmt.Printf("creation request failed: %v\n", err)
		os.Exit(1)
	}
	utils.PrintJsonResponse(resp.Body)
}

func deleteMachine(cmd *cobra.Command, args []string) {
	body, _ := json.Marshal(map[string]string{"Name": machineName})
	resp, err := utils.PostJson(serverUrl("/delete"), body)
	if err != nil {
		fmt.Printf("deletion request failed: %v\n", err)
		os.Exit(1)
	}
	utils.PrintJsonResponse(resp.Body)
}

func list(cmd *cobra.Command, args []string) {
	resp, err := utils.GetJson(serverUrl("/machine"))
	if err != nil {
		fmt.Printf("list request failed: %v\n", err)
		os.Exit(1)
	}
	utils.PrintJsonResponse(resp.Body)
}

func invoke(cmd *cobra.Command, args []string) {
	if machineName == "" {
		fmt.Println("machine name is required")
		os.Exit(1)
	}
	body, _ := json.Marshal(map[string]interface{}{
		"Input": json.RawMessage(inputJson),
		"Async": async,
	})
	resp, err := utils.PostJson(serverUrl("/invoke/"+machineName), body)
	if err != nil {
		fmt.Printf("invocation failed: %v\n", err)
		os.Exit(1)
	}
	utils.PrintJsonResponse(resp.Body)
}

func poll(cmd *cobra.Command, args []string) {
	if executionId == "" {
		fmt.Println("execution identifier is required")
		os.Exit(1)
	}
	resp, err := utils.GetJson(serverUrl("/poll/" + executionId))
	if err != nil {
		fmt.Printf("poll request failed: %v\n", err)
		os.Exit(1)
	}
	utils.PrintJsonResponse(resp.Body)
}

func status(cmd *cobra.Command, args []string) {
	resp, err := utils.GetJson(serverUrl("/status"))
	if err != nil {
		fmt.Printf("status request failed: %v\n", err)
		os.Exit(1)
	}
	utils.PrintJsonResponse(resp.Body)
}
