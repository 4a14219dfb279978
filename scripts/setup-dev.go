package main

import (
	"fmt"
	"os"
	"os/exec"
)

func main() {
	fmt.Println("Setting up booking service development environment")

	if err := checkDocker(); err != nil {
		fmt.Printf("Docker issue detected: %v\n", err)
		fmt.Println("You can still run without dependencies: STORE_DRIVER=memory KAFKA_MOCK_MODE=true go run .")
		return
	}

	fmt.Println("Docker is running")
	fmt.Println("Starting MySQL, Kafka and Redis...")

	if err := run("docker-compose", "up", "-d", "mysql", "kafka", "redis"); err != nil {
		fmt.Printf("Failed to start services: %v\n", err)
		return
	}

	fmt.Println("Applying schema...")
	if err := run("go", "run", ".", "-migrate"); err != nil {
		fmt.Printf("Migration failed: %v\n", err)
		fmt.Println("MySQL may still be starting; retry: go run . -migrate")
		return
	}

	fmt.Println("Services started successfully!")
	fmt.Println("Run: KAFKA_MOCK_MODE=false go run .")
}

func run(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func checkDocker() error {
	cmd := exec.Command("docker", "info")
	return cmd.Run()
}
